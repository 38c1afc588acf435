package dashboard

import "html/template"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>DataAuto Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table.preview { border-collapse: collapse; }
table.preview td, table.preview th { border: 1px solid #ccc; padding: 2px 8px; }
pre { background: #f6f6f6; padding: 1em; }
.error { color: #b00; }
</style>
</head>
<body>
<h1>DataAuto Dashboard</h1>

{{if .Error}}<p class="error">{{.Error}}</p>{{end}}

<h2>Upload data</h2>
<form action="/upload" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,.json,.jsonl,.xlsx">
<button type="submit">Upload</button>
</form>

{{if .Loaded}}
<h2>{{.Name}} ({{.Rows}} rows, {{.Cols}} columns)</h2>
<table class="preview">
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Preview}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}
</table>

<h2>Summary</h2>
<pre>{{.Summary}}</pre>

<h2>Plot</h2>
<form action="/plot" method="get" target="_blank">
<select name="type">
<option value="histogram">histogram</option>
<option value="box">box</option>
<option value="scatter">scatter</option>
<option value="line">line</option>
<option value="heatmap">heatmap</option>
</select>
column <select name="column">{{range .Numeric}}<option>{{.}}</option>{{end}}</select>
x <select name="x">{{range .Numeric}}<option>{{.}}</option>{{end}}</select>
y <select name="y">{{range .Numeric}}<option>{{.}}</option>{{end}}</select>
<button type="submit">Show</button>
</form>

<h2>Train</h2>
<form action="/train" method="post">
target <select name="target">{{range .Header}}<option>{{.}}</option>{{end}}</select>
<select name="model_type">
<option value="regressor">regressor</option>
<option value="classifier">classifier</option>
</select>
test size <input name="test_size" value="{{.TestSize}}" size="4">
<button type="submit">Train</button>
</form>
{{end}}

{{if .Report}}
<h2>Model report</h2>
<pre>{{.Report}}</pre>
{{end}}
</body>
</html>
`))
