package render

import (
	_ "embed"
	"html/template"
	"strings"
)

//go:embed style.css
var stylesheet string

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
{{.Style}}
</style>
</head>
<body>
<main class="lesson">
{{.Body}}
</main>
</body>
</html>
`))

type page struct {
	Title string
	Style template.CSS
	Body  template.HTML
}

func wrap(title string, body string) (string, error) {
	var b strings.Builder
	err := documentTemplate.Execute(&b, page{
		Title: title,
		Style: template.CSS(stylesheet),
		Body:  template.HTML(body),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
