package text

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/russross/blackfriday/v2"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern = regexp.MustCompile(`(?i)(^|[^\w])/?[ur]/[\w-]+`)
)

// Plain parses reddit markdown and returns only its visible text. Link targets and
// bare URLs are dropped; stray angle brackets are kept as text.
func Plain(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	var sb strings.Builder
	doc := blackfriday.New(blackfriday.WithNoExtensions()).Parse([]byte(input))
	doc.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Text, blackfriday.Code, blackfriday.HTMLSpan:
			sb.Write(node.Literal)
		case blackfriday.CodeBlock, blackfriday.HTMLBlock:
			sb.Write(node.Literal)
			sb.WriteByte(' ')
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			sb.WriteByte(' ')
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.Item, blackfriday.TableCell:
			if !entering {
				sb.WriteByte(' ')
			}
		}
		return blackfriday.GoToNext
	})

	plain := html.UnescapeString(sb.String())
	plain = urlPattern.ReplaceAllString(plain, "")

	return strings.Join(strings.Fields(plain), " ")
}

// Scrub drops URLs and u/ r/ mentions.
func Scrub(input string) string {
	input = urlPattern.ReplaceAllString(input, " ")
	return mentionPattern.ReplaceAllString(input, "$1 ")
}

// Words lowercases input and splits it on every non-letter rune.
func Words(input string) []string {
	return strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func IsDeleted(body string) bool {
	body = strings.TrimSpace(body)
	return body == "[deleted]" || body == "[removed]"
}

// Truncate cuts s to at most n bytes without splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
