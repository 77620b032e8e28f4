package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed wishes.txt
var FS embed.FS

// ReadLines returns the non-empty, non-comment lines of r, trimmed.
// Case is preserved; wishes are shown verbatim.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// WishList returns the embedded default wishes in file order.
func WishList() ([]string, error) {
	f, err := FS.Open("wishes.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}
