package server

import (
	"bytes"
	"html/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Sub-Saharan Africa maps</title>
  <style>
    body { font-family: sans-serif; background: #f8f9fa; margin: 2rem; }
    figure { display: inline-block; margin: 0 1rem 1rem 0; }
    img { max-width: 420px; border: 1px solid #cccccc; background: #ffffff; }
  </style>
</head>
<body>
  <h1>Sub-Saharan Africa maps</h1>
  {{- range . }}
  {{- if eq .Kind "map" }}
  <figure>
    <a href="/maps/{{ .File }}"><img src="/maps/{{ .File }}" alt="{{ .Name }}"></a>
    <figcaption>{{ .Name }} ({{ .File }})</figcaption>
  </figure>
  {{- else }}
  <p><a href="/maps/{{ .File }}" download>{{ .File }}</a></p>
  {{- end }}
  {{- else }}
  <p>No rendered maps found. Run the generator first.</p>
  {{- end }}
</body>
</html>
`))

// renderIndex builds the minified preview page.
func renderIndex(artifacts []Artifact) ([]byte, error) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, artifacts); err != nil {
		return nil, err
	}

	m := minify.New()
	m.AddFunc("text/html", html.Minify)

	return m.Bytes("text/html", buf.Bytes())
}
