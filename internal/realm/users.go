package realm

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// parseUsers decodes the users file. Blank lines and # comments are ignored,
// malformed lines are returned in skipped.
func parseUsers(data []byte) (users map[string][]byte, skipped []int) {
	users = make(map[string][]byte)
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, hash, ok := strings.Cut(text, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || hash == "" {
			skipped = append(skipped, line)
			continue
		}
		users[name] = []byte(hash)
	}
	return users, skipped
}

func formatUsers(users map[string][]byte) []byte {
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)

	var b bytes.Buffer
	for _, name := range names {
		fmt.Fprintf(&b, "%s:%s\n", name, users[name])
	}
	return b.Bytes()
}
