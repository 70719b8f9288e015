package ampdoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ImageAdvisory describes an image in the document that email clients are
// likely to render badly. Advisories never block generation.
type ImageAdvisory struct {
	Tag    string `json:"tag"`
	Src    string `json:"src"`
	Reason string `json:"reason"`
}

// AuditImages inspects the image tags of a finished document. amp-img needs
// explicit positive width and height, image sources should be https, and
// plain <img> is not valid in AMP for email.
func AuditImages(doc string) ([]ImageAdvisory, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, nil
	}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var advisories []ImageAdvisory
	parsed.Find("amp-img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		for _, attr := range []string{"width", "height"} {
			if !positiveAttr(s, attr) {
				advisories = append(advisories, ImageAdvisory{
					Tag:    "amp-img",
					Src:    src,
					Reason: fmt.Sprintf("missing or invalid %s", attr),
				})
			}
		}
		if src != "" && !strings.HasPrefix(strings.ToLower(src), "https://") {
			advisories = append(advisories, ImageAdvisory{Tag: "amp-img", Src: src, Reason: "src is not https"})
		}
	})

	parsed.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		advisories = append(advisories, ImageAdvisory{Tag: "img", Src: src, Reason: "use amp-img in AMP documents"})
	})

	return advisories, nil
}

func positiveAttr(s *goquery.Selection, name string) bool {
	v, ok := s.Attr(name)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	return err == nil && n > 0
}
