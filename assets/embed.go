package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed catalog.json dictionary.txt
var FS embed.FS

// CatalogJSON returns the raw precomputed puzzle catalog.
func CatalogJSON() ([]byte, error) {
	return FS.ReadFile("catalog.json")
}

// DictionaryLines returns the frequency dictionary one line per entry,
// with blanks and comments stripped.
func DictionaryLines() ([]string, error) {
	f, err := FS.Open("dictionary.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
