package checkout

import (
	"html/template"

	"github.com/kevin07696/intesa-checkout/internal/domain"
)

// The redirect form posts itself as soon as the page loads. The button covers
// browsers with scripting disabled.
var redirectTemplate = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Redirecting to payment</title>
</head>
<body onload="document.forms['intesa_redirect'].submit()">
    <form id="intesa_redirect" name="intesa_redirect" method="post" action="{{.URL}}">
        {{range .Fields}}<input type="hidden" name="{{.Name}}" value="{{.Value}}">
        {{end}}<noscript><button type="submit">Continue to payment</button></noscript>
    </form>
</body>
</html>
`))

var resultTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{if .Accepted}}Payment completed{{else}}Payment failed{{end}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; background-color: #f5f5f5; }
        .page { background: white; padding: 40px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .success { color: #10b981; }
        .error { color: #ef4444; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { text-align: left; padding: 8px; border-bottom: 1px solid #e5e7eb; }
    </style>
</head>
<body>
    <div class="page">
        <h1 class="{{if .Accepted}}success{{else}}error{{end}}">{{if .Accepted}}Payment completed{{else}}Payment failed{{end}}</h1>
        {{with .Message}}<p>{{.}}</p>{{end}}
        {{if .Report}}<table>
            {{range .Report}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>
            {{end}}</table>{{end}}
        {{with .ContinueURL}}<p><a href="{{.}}">Return to the shop</a></p>{{end}}
    </div>
</body>
</html>
`))

type resultPage struct {
	Accepted    bool
	Message     string
	Report      domain.PaymentReport
	ContinueURL string
}
