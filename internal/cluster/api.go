package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/runas/internal/common"
)

// Feature is one entry of the feature-state listing.
type Feature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Features lists the features whose state can be included in snapshots.
func Features(ctx context.Context, r Requester, creds Credentials) ([]Feature, error) {
	resp, err := r.Do(ctx, http.MethodGet, "_features", "", creds, nil)
	if err != nil {
		return nil, common.UnavailableError("Failed to list features", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, common.DataError("Failed to list features", fmt.Errorf("%w [%d]", common.ErrUnexpectedStatus, resp.StatusCode))
	}

	var body struct {
		Features []Feature `json:"features"`
	}
	if err := resp.JSON(&body); err != nil {
		return nil, common.DataError("Failed to list features", err)
	}
	return body.Features, nil
}

// ChangePassword sets a new password for username through the security API.
func ChangePassword(ctx context.Context, r Requester, creds Credentials, username string, password []byte) error {
	body, err := json.Marshal(struct {
		Password string `json:"password"`
	}{Password: string(password)})
	if err != nil {
		return err
	}
	defer common.WipeByteArray(body)

	msg := fmt.Sprintf("Failed to reset password for the [%s] user", username)
	resp, err := r.Do(ctx, http.MethodPost, "_security/user/"+username+"/_password", "pretty", creds, body)
	if err != nil {
		return common.UnavailableError(msg, err)
	}
	if resp.StatusCode != http.StatusOK {
		return common.DataError(msg, fmt.Errorf("%w [%d]", common.ErrUnexpectedStatus, resp.StatusCode))
	}
	return nil
}
