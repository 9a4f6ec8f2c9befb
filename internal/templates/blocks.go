package templates

// blockSource holds every SAP GUI scripting block. Each define renders one
// block; blank lines are dropped when the output is split into commands.
// Field ids and control paths are textually significant for the host.
const blockSource = `
{{define "header" -}}
If Not IsObject(application) Then
  Set SapGuiAuto  = GetObject("SAPGUI")
  Set application = SapGuiAuto.GetScriptingEngine
End If
If Not IsObject(connection) Then
  Set connection = application.Children(0)
End If
If Not IsObject(session) Then
  Set session    = connection.Children(0)
End If
If IsObject(WScript) Then
  WScript.ConnectObject session,     "on"
  WScript.ConnectObject application, "on"
End If
session.findById("wnd[0]").maximize
{{- end}}

{{define "create" -}}
session.findById("wnd[0]/tbar[0]/okcd").text = "mb21"
session.findById("wnd[0]").sendVKey 0
session.findById("wnd[0]/usr/ctxtRM07M-BWART").text = "{{vbs .MovementType}}"
session.findById("wnd[0]/usr/ctxtRM07M-WERKS").text = "{{vbs .Plant}}"
session.findById("wnd[0]/usr/ctxtRM07M-WERKS").caretPosition = 2
session.findById("wnd[0]").sendVKey 0
{{- end}}

{{define "change" -}}
session.findById("wnd[0]/tbar[0]/okcd").text = "mb22"
session.findById("wnd[0]").sendVKey 0
{{- end}}

{{define "details" -}}
poCode = "{{vbs .OrderCode}}"
ipCode = "{{vbs .SecondaryID}}"
movSAP = "{{vbs .MovementCode}}"
ecCode = "{{vbs .ContextCode}}"
{{if .Return}}svrCode = "{{vbs .RequestCode}}"{{end}}
{{- end}}

{{define "select" -}}
{{range $i := until .}}session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-XWAOK[{{$i}},76]").selected = true
{{end}}
{{- end}}

{{define "context.project" -}}
session.findById("wnd[0]/usr/txtRKPF-WEMPF").text = "{{vbs .User}}"
session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:9000/ctxtCOBL-PS_POSID").text = "{{vbs .CostElement}}"
session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:9000/ctxtCOBL-FKBER").text = "{{.NoBudget}}"
{{- end}}

{{define "context.project.return" -}}
session.findById("wnd[0]/usr/ctxtKM07R-SAKNR").text = "{{.ReturnAccount}}"
{{template "context.project" .}}
{{- end}}

{{define "context.costcenter" -}}
session.findById("wnd[0]/usr/txtRKPF-WEMPF").text = "{{vbs .User}}"
session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:1013/ctxtCOBL-KOSTL").text = "{{vbs .CostElement}}"
session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:1013/ctxtCOBL-FKBER").text = "{{vbs .AreaFunction}}"
{{- end}}

{{define "fill" -}}
{{range $i, $it := .}}session.findById("wnd[0]/usr/sub:SAPMM07R:0521/ctxtRESB-MATNR[{{$i}},7]").text = "{{$it.Material}}"
session.findById("wnd[0]/usr/sub:SAPMM07R:0521/txtRESB-ERFMG[{{$i}},26]").text = "{{$it.Quantity}}"
session.findById("wnd[0]/usr/sub:SAPMM07R:0521/ctxtRESB-LGORT[{{$i}},53]").text = "{{vbs $it.Storage}}"
{{end}}
{{- end}}

{{define "confirm" -}}
session.findById("wnd[0]").sendVKey 11
{{range until .}}session.findById("wnd[0]").sendVKey 0
{{end -}}
session.findById("wnd[0]/sbar").doubleClick
reservationNumber = session.findById("wnd[0]/sbar").Text
reservationNumber = Mid(reservationNumber, InStr(reservationNumber, "Reservation") + 14, 7)
session.findById("wnd[0]/shellcont").close
session.findById("wnd[0]/usr/ctxtRM07M-BWART").caretPosition = 3
session.findById("wnd[0]").sendVKey 0
{{- end}}

{{define "writelog" -}}
filePath = "{{vbs .LogPath}}"
Set fso = CreateObject("Scripting.FileSystemObject")
Set file = fso.OpenTextFile(filePath, 8, True) ' 8 = Append mode
file.WriteLine reservationNumber & "," & poCode & "," & ipCode & "," & movSAP & "," & ecCode{{if .Return}} & "," & svrCode{{end}}
file.Close
{{- end}}

{{define "join" -}}
session.findById("wnd[0]/usr/ctxtRM07M-RSNUM").text = "{{vbs .}}"
session.findById("wnd[0]/usr/ctxtRM07M-RSNUM").caretPosition = 7
session.findById("wnd[0]").sendVKey 0
{{- end}}

{{define "modify" -}}
{{range .}}session.findById("wnd[0]/usr/sub:SAPMM07R:0521/txtRESB-ERFMG[{{sub .Position 1}},26]").text = "{{.Quantity}}"
{{end}}
{{- end}}

{{define "delete" -}}
{{range .}}session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-XLOEK[{{sub . 1}},83]").selected = true
session.findById("wnd[0]/usr/sub:SAPMM07R:0521/txtRESB-ERFMG[{{sub . 1}},26]").text = "0"
{{end}}
{{- end}}

{{define "finalize" -}}
{{range .}}session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-KZEAR[{{sub . 1}},78]").selected = true
{{end}}
{{- end}}

{{define "add.dialog" -}}
session.findById("wnd[0]/tbar[1]/btn[7]").press
session.findById("wnd[1]/usr/ctxtRM07M-BDTER").text = "{{.Date}}"
session.findById("wnd[1]/usr/ctxtRM07M-WERKS").text = "{{vbs .Plant}}"
session.findById("wnd[1]/usr/ctxtRM07M-WERKS").setFocus
session.findById("wnd[1]/usr/ctxtRM07M-WERKS").caretPosition = 4
session.findById("wnd[1]").sendVKey 0
{{- end}}

{{define "add.confirm.costcenter" -}}
session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-XWAOK[0,76]").setFocus
session.findById("wnd[0]").sendVKey 11
session.findById("wnd[0]").sendVKey 0
session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:1013/ctxtCOBL-FKBER").text = "{{vbs .CostElement}}"
session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:1013/ctxtCOBL-FKBER").caretPosition = 8
{{range until .Count}}session.findById("wnd[0]").sendVKey 0
{{end}}
{{- end}}

{{define "add.confirm.project" -}}
session.findById("wnd[0]/usr/sub:SAPMM07R:0521/chkRESB-XWAOK[1,76]").setFocus
session.findById("wnd[0]/tbar[0]/btn[11]").press
session.findById("wnd[0]").sendVKey 0
session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:9000/ctxtCOBL-FKBER").text = "{{.NoBudget}}"
session.findById("wnd[0]/usr/subBLOCK:SAPLKACB:9000/ctxtCOBL-FKBER").caretPosition = 9
{{range until .Count}}session.findById("wnd[0]").sendVKey 0
{{end}}
{{- end}}

{{define "save" -}}
session.findById("wnd[0]/tbar[0]/btn[11]").press
{{- end}}

{{define "back" -}}
session.findById("wnd[0]/tbar[0]/btn[15]").press
{{- end}}
`
