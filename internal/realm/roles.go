package realm

import (
	"bufio"
	"bytes"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// unassigned keys the roles listed without any user, so that a rewrite keeps
// lines such as "viewer:".
const unassigned = ""

// parseRoles decodes users_roles lines of the form role:user1,user2 and
// inverts them into username -> roles. Roles keep the order of the file.
func parseRoles(data []byte) (roles map[string][]string, skipped []int) {
	roles = make(map[string][]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		role, list, ok := strings.Cut(text, ":")
		role = strings.TrimSpace(role)
		if !ok || role == "" {
			skipped = append(skipped, line)
			continue
		}
		assigned := false
		for _, user := range strings.Split(list, ",") {
			user = strings.TrimSpace(user)
			if user == "" {
				continue
			}
			assigned = true
			if !lo.Contains(roles[user], role) {
				roles[user] = append(roles[user], role)
			}
		}
		if !assigned && !lo.Contains(roles[unassigned], role) {
			roles[unassigned] = append(roles[unassigned], role)
		}
	}
	return roles, skipped
}

// formatRoles writes one line per role with its users sorted.
func formatRoles(roles map[string][]string) []byte {
	byRole := make(map[string][]string)
	for user, rs := range roles {
		for _, role := range rs {
			if user == unassigned {
				if _, ok := byRole[role]; !ok {
					byRole[role] = nil
				}
				continue
			}
			byRole[role] = append(byRole[role], user)
		}
	}

	names := lo.Keys(byRole)
	sort.Strings(names)

	var b bytes.Buffer
	for _, role := range names {
		users := lo.Uniq(byRole[role])
		sort.Strings(users)
		b.WriteString(role)
		b.WriteByte(':')
		b.WriteString(strings.Join(users, ","))
		b.WriteByte('\n')
	}
	return b.Bytes()
}
