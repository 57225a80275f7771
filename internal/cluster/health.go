package cluster

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/runas/internal/common"
	"github.com/dmitrijs2005/runas/internal/logging"
)

const (
	healthPath  = "_cluster/health"
	healthQuery = "pretty"

	// DefaultRetryInterval is the pause between probes while the new user is
	// not yet visible to the cluster.
	DefaultRetryInterval = time.Second
)

// Status is the aggregate cluster health.
type Status string

const (
	StatusGreen   Status = "green"
	StatusYellow  Status = "yellow"
	StatusRed     Status = "red"
	StatusUnknown Status = "unknown"
)

// Verdict is the outcome of one health probe.
type Verdict struct {
	Status Status
	// HTTPStatus is the status code of the probe that produced the verdict.
	HTTPStatus int
}

func (v Verdict) String() string {
	if v.Status == StatusUnknown || v.Status == "" {
		return fmt.Sprintf("UNKNOWN(%d)", v.HTTPStatus)
	}
	return strings.ToUpper(string(v.Status))
}

func parseStatus(s string) Status {
	switch Status(strings.ToLower(s)) {
	case StatusGreen:
		return StatusGreen
	case StatusYellow:
		return StatusYellow
	case StatusRed:
		return StatusRed
	}
	return StatusUnknown
}

// Prober checks cluster health as a freshly created file realm user. The
// realm reloads its files on an interval, so 401 (user not loaded yet) and
// 403 (user loaded before its roles) are retried.
type Prober struct {
	client   Requester
	interval time.Duration
	out      io.Writer
	logger   logging.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewProber returns a Prober that waits interval between retries and writes
// operator guidance to out.
func NewProber(client Requester, interval time.Duration, out io.Writer, logger logging.Logger) *Prober {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Prober{client: client, interval: interval, out: out, logger: logger, sleep: sleepContext}
}

// Check probes GET /_cluster/health?pretty. retries bounds how many 401/403
// answers are retried. A RED cluster fails unless force is set.
func (p *Prober) Check(ctx context.Context, username string, password []byte, retries int, force bool) (Verdict, error) {
	creds := Credentials{Username: username, Password: password}

	for {
		resp, err := p.client.Do(ctx, http.MethodGet, healthPath, healthQuery, creds, nil)
		if err != nil {
			return Verdict{Status: StatusUnknown}, common.UnavailableError("Failed to determine the health of the cluster", err)
		}

		if resp.StatusCode != http.StatusOK {
			verdict := Verdict{Status: StatusUnknown, HTTPStatus: resp.StatusCode}
			authPending := resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden
			if authPending && retries > 0 {
				p.logger.Debug(ctx, "unexpected http status while determining cluster health, will retry",
					"status", resp.StatusCode, "retries_left", retries)
				if err := p.sleep(ctx, p.interval); err != nil {
					return verdict, common.UnavailableError("Interrupted while waiting for the cluster to accept the temporary user", err)
				}
				retries--
				continue
			}
			return verdict, common.DataError("Failed to determine the health of the cluster",
				fmt.Errorf("%w [%d]", common.ErrUnexpectedStatus, resp.StatusCode))
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := resp.JSON(&body); err != nil {
			return Verdict{Status: StatusUnknown, HTTPStatus: resp.StatusCode}, common.DataError("Failed to determine the health of the cluster", err)
		}
		if body.Status == "" {
			return Verdict{Status: StatusUnknown, HTTPStatus: resp.StatusCode}, common.DataError("Failed to determine the health of the cluster", common.ErrNoHealthStatus)
		}

		verdict := Verdict{Status: parseStatus(body.Status), HTTPStatus: resp.StatusCode}
		if verdict.Status == StatusRed && !force {
			p.explainRed()
			return verdict, common.UnavailableError("Failed to determine the health of the cluster", common.ErrUnhealthy)
		}
		return verdict, nil
	}
}

func (p *Prober) explainRed() {
	fmt.Fprintln(p.out, "Failed to determine the health of the cluster. Cluster health is currently RED.")
	fmt.Fprintln(p.out, "This means that some cluster data is unavailable and your cluster is not fully functional.")
	fmt.Fprintln(p.out, "The cluster logs might contain information/indications for the underlying cause.")
	fmt.Fprintln(p.out, "It is recommended that you resolve the issues with your cluster before continuing.")
	fmt.Fprintln(p.out, "It is very likely that the command will fail when run against an unhealthy cluster.")
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "If you still want to attempt to execute this command against an unhealthy cluster, you can pass the `-f` (`--force`) parameter.")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
