package devserve

import (
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/sirupsen/logrus"
)

const indexPage = "index.html"

var listingTmpl = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
<head><title>Index of {{.Path}}</title></head>
<body>
<h1>Index of {{.Path}}</h1>
<hr>
<ul>
{{- range .Entries}}
<li><a href="{{.}}">{{.}}</a></li>
{{- end}}
</ul>
<hr>
</body>
</html>
`))

// FileHandler serves GET/HEAD requests for files beneath Root. Request paths
// are confined to Root: paths carrying ".." elements are refused outright,
// and the remainder are joined with SecureJoin so symlinks cannot escape.
type FileHandler struct {
	Root string
}

func (h *FileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}
	if containsDotDot(upath) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	cleaned := path.Clean(upath)

	full, err := securejoin.SecureJoin(h.Root, cleaned)
	if err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	stat, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		logrus.Errorf("stat %q: %s", full, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if stat.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, cleaned+"/", http.StatusMovedPermanently)
			return
		}
		index := filepath.Join(full, indexPage)
		if fi, err := os.Stat(index); err == nil && fi.Mode().IsRegular() {
			h.serveFile(w, r, index, fi)
			return
		}
		h.serveListing(w, r, full, cleaned)
		return
	}

	if !stat.Mode().IsRegular() {
		// sockets, pipes, devices
		http.NotFound(w, r)
		return
	}
	h.serveFile(w, r, full, stat)
}

func (h *FileHandler) serveFile(w http.ResponseWriter, r *http.Request, full string, stat os.FileInfo) {
	fh, err := os.Open(full)
	if err != nil {
		logrus.Errorf("open %q: %s", full, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer fh.Close()
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), fh)
}

func (h *FileHandler) serveListing(w http.ResponseWriter, r *http.Request, full, urlPath string) {
	entries, err := os.ReadDir(full)
	if err != nil {
		logrus.Errorf("readdir %q: %s", full, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	dirPath := urlPath
	if !strings.HasSuffix(dirPath, "/") {
		dirPath += "/"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := listingTmpl.Execute(w, struct {
		Path    string
		Entries []string
	}{dirPath, names}); err != nil {
		logrus.Errorf("listing %q: %s", full, err)
	}
}

// containsDotDot reports whether any slash- or backslash-separated element
// of the request path is a parent reference.
func containsDotDot(upath string) bool {
	if !strings.Contains(upath, "..") {
		return false
	}
	for _, elem := range strings.FieldsFunc(upath, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if elem == ".." {
			return true
		}
	}
	return false
}
