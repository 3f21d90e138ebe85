package sitebuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tdewolff/parse/v2"
	lexhtml "github.com/tdewolff/parse/v2/html"
)

const dashedLine = "------------------------------"

// NotifyService is a search engine endpoint that accepts sitemap pings.
type NotifyService struct {
	Name     string
	Endpoint string
	Param    string
}

var (
	ServiceGoogle = NotifyService{
		Name:     "google",
		Endpoint: "http://www.google.com/webmasters/sitemaps/ping",
		Param:    "sitemap",
	}

	ServiceBing = NotifyService{
		Name:     "bing",
		Endpoint: "http://www.bing.com/webmaster/ping.aspx",
		Param:    "siteMap",
	}
)

// SelectServices returns the services enabled by the CLI switches.
func SelectServices(google, bing bool) []NotifyService {
	var services []NotifyService
	if google {
		services = append(services, ServiceGoogle)
	}
	if bing {
		services = append(services, ServiceBing)
	}

	return services
}

// notify pings every service with the sitemap URL and prints
// the text of each response. A non-200 answer is reported, not fatal.
func (e *Executor) notify(ctx context.Context, s Notify) error {
	out := e.Stdout
	if out == nil {
		out = io.Discard
	}

	if len(s.Services) == 0 {
		fmt.Fprintln(out, "* Specify service(s) to ping.")
		fmt.Fprintln(out, "* type: sitebuild --help")
		fmt.Fprintln(out, "* for the list of available options.")
		fmt.Fprintln(out)
		return nil
	}
	if e.Client == nil {
		return errors.New("notify requires an http client")
	}

	logger := slog.Default().WithGroup("notify").With("sitemap", s.SitemapUrl)

	for i := range s.Services {
		svc := s.Services[i]

		fmt.Fprintln(out, dashedLine)
		fmt.Fprintf(out, "* Ping sitemap.xml to %s\n", svc.Endpoint)

		resp, err := e.Client.R().
			SetContext(ctx).
			SetQueryParam(svc.Param, s.SitemapUrl).
			Get(svc.Endpoint)
		if err != nil {
			return fmt.Errorf("failed to ping %s: %w", svc.Name, err)
		}

		logger.Info("pinged", "service", svc.Name, "status", resp.StatusCode())
		if resp.StatusCode() == http.StatusOK {
			fmt.Fprintln(out, "* Success!")
		} else {
			fmt.Fprintln(out, "* Error occurred.")
		}

		fmt.Fprint(out, "* Printing html response:\n\n")
		fmt.Fprintln(out, HtmlText(resp.Body())+"\n")
	}

	return nil
}

// HtmlText returns the visible text of an HTML document,
// dropping tags, comments and script or style bodies.
func HtmlText(doc []byte) string {
	lexer := lexhtml.NewLexer(parse.NewInputBytes(doc))
	text := new(strings.Builder)

	skip := false
	for {
		tt, data := lexer.Next()
		switch tt {
		case lexhtml.ErrorToken:
			return strings.TrimSpace(text.String())

		case lexhtml.StartTagToken:
			name := strings.ToLower(string(lexer.Text()))
			skip = name == "script" || name == "style"

		case lexhtml.EndTagToken:
			skip = false

		case lexhtml.TextToken:
			if skip {
				continue
			}

			chunk := bytes.TrimSpace(data)
			if len(chunk) == 0 {
				continue
			}
			if text.Len() != 0 {
				text.WriteByte('\n')
			}

			text.WriteString(html.UnescapeString(string(chunk)))
		}
	}
}
