package spoonacular

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText flattens the instruction markup Spoonacular returns. List items
// become one line each; other markup is reduced to its text.
func HTMLToText(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style").Remove()

	var steps []string
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		if text := collapseSpace(s.Text()); text != "" {
			steps = append(steps, text)
		}
	})
	if len(steps) > 0 {
		return strings.Join(steps, "\n")
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := collapseSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n")
	}

	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
