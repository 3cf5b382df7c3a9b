package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ble-joystick/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"seconds": func(d time.Duration) string {
		d = d.Truncate(100 * time.Millisecond)
		m := int(d.Minutes())
		s := d.Seconds() - float64(m*60)
		if m > 0 {
			return fmt.Sprintf("%dm %.1fs", m, s)
		}
		return fmt.Sprintf("%.1fs", s)
	},
	"phaseClass": func(phase string) string {
		switch phase {
		case "CONNECTED":
			return "connected"
		case "ADVERTISING":
			return "advertising"
		default:
			return "down"
		}
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="1">
<title>{{.Config.Name}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.cmd { font-weight: bold; }
.connected { color: green; }
.advertising { color: orange; }
.down { color: red; }
</style>
</head>
<body>
<h1>{{.Config.Name}}</h1>

<h2>Input</h2>
<table>
<tr><th>Last command</th><td class="cmd">{{.Command}}</td></tr>
<tr><th>Idle</th><td>{{seconds .IdleFor}} of {{.Config.IdleTimeoutMs}}ms</td></tr>
<tr><th>Samples</th><td>{{.Counts.Samples}}</td></tr>
<tr><th>Transitions</th><td>{{.Counts.Transitions}}</td></tr>
</table>

<h2>Link</h2>
<table>
<tr><th>Phase</th><td class="{{phaseClass .Link.Phase.String}}">{{.Link.Phase}}</td></tr>
{{if .Link.Handle}}<tr><th>Client</th><td>{{.Link.Handle}}</td></tr>{{end}}
<tr><th>Connections</th><td>{{.Connections}}</td></tr>
<tr><th>MQTT</th><td>{{if .Config.Broker}}{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}}){{else}}disabled{{end}}</td></tr>
</table>

<h2>Wake cycle</h2>
<table>
<tr><th>Boot cause</th><td>{{.Config.BootCause}}</td></tr>
<tr><th>Awake for</th><td>{{seconds .Uptime}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Settle</th><td>{{.Config.SettleMs}}ms</td></tr>
<tr><th>Suspend budget</th><td>{{.Config.BudgetMs}}ms</td></tr>
<tr><th>Dead zone</th><td>{{.Config.Low}}..{{.Config.High}}</td></tr>
<tr><th>Left</th><td>{{if .Config.LeftAsSelect}}SELECT{{else}}LEFT{{end}}</td></tr>
<tr><th>Button is activity</th><td>{{if .Config.ButtonWakes}}yes{{else}}no{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has duration methods but the template needs fields.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		IdleFor time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		IdleFor:  snap.IdleFor(),
	}
	indexTmpl.Execute(w, data)
}
