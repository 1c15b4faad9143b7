package mail

import (
	"fmt"
	"html"
	"strings"

	"github.com/russross/blackfriday"

	"github.com/dengun/assistant/server/domain/entities"
)

const (
	notificationSubject = "Novo Registro de Conversa"
	notProvided         = "Não informado"
)

const htmlFlags = blackfriday.HTML_SKIP_HTML |
	blackfriday.HTML_SKIP_IMAGES |
	blackfriday.HTML_SAFELINK |
	blackfriday.HTML_USE_XHTML

const markdownExtensions = blackfriday.EXTENSION_NO_INTRA_EMPHASIS |
	blackfriday.EXTENSION_AUTOLINK |
	blackfriday.EXTENSION_STRIKETHROUGH |
	blackfriday.EXTENSION_HARD_LINE_BREAK

// RenderNotification builds the subject and both bodies of a contact notification.
// The conversation may contain assistant markdown; raw HTML in it is dropped.
func RenderNotification(n entities.ContactNotification) (subject, text, htmlBody string) {
	email := orNotProvided(n.Email)
	phone := orNotProvided(n.Phone)

	text = fmt.Sprintf(`Detalhes do Cliente:

Email do Cliente: %s
Telefone do Cliente: %s

Conversa:
%s
`, email, phone, n.Conversation)

	renderer := blackfriday.HtmlRenderer(htmlFlags, "", "")
	conversation := blackfriday.Markdown([]byte(n.Conversation), renderer, markdownExtensions)

	var b strings.Builder
	b.WriteString("<h2>" + notificationSubject + "</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Email do Cliente:</strong> %s</p>\n", html.EscapeString(email))
	fmt.Fprintf(&b, "<p><strong>Telefone do Cliente:</strong> %s</p>\n", html.EscapeString(phone))
	b.WriteString("<h3>Conversa:</h3>\n")
	b.WriteString(`<div style="white-space: pre-wrap; font-family: monospace">` + "\n")
	b.Write(conversation)
	b.WriteString("</div>\n")

	return notificationSubject, text, b.String()
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}
