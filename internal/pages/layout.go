// Package pages renders the public site with gomponents.
package pages

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type PageConfig struct {
	Title       string
	Description string
	Scripts     []string
}

func Layout(config PageConfig, owner string, content ...g.Node) g.Node {
	if config.Title == "" {
		config.Title = owner + " | Voice AI Agents"
	}
	if config.Description == "" {
		config.Description = "Autonomous voice agents that answer every call, qualify leads and book appointments around the clock."
	}

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),
				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:description"), Content(config.Description)),
				Meta(g.Attr("property", "og:type"), Content("website")),
				Link(Rel("stylesheet"), Href("/static/styles.css")),
			),
			Body(
				Class("site"),
				Navbar(owner),
				Main(ID("main"), g.Group(content)),
				PageFooter(owner),
				Script(Src("/static/js/site.js"), Defer()),
				g.Map(config.Scripts, func(src string) g.Node {
					return Script(Src(src), Defer())
				}),
			),
		),
	})
}

func Navbar(owner string) g.Node {
	links := []struct{ label, href string }{
		{"Demos", "/#demos"},
		{"Use Cases", "/#use-cases"},
		{"ROI", "/#roi"},
		{"Testimonials", "/#testimonials"},
		{"Feedback", "/feedback"},
	}
	return Header(
		Class("navbar"),
		Nav(
			g.Attr("aria-label", "Primary"),
			A(Class("brand"), Href("/"), g.Text(owner)),
			Ul(
				Class("nav-links"),
				g.Map(links, func(l struct{ label, href string }) g.Node {
					return Li(A(Href(l.href), g.Text(l.label)))
				}),
			),
			A(Class("btn btn-primary"), Href("/#contact"), g.Text("Book Strategy Session")),
		),
	)
}

func PageFooter(owner string) g.Node {
	return Footer(
		Class("footer"),
		P(g.Textf("© %s. All rights reserved.", owner)),
		Ul(
			Class("footer-links"),
			Li(A(Href("/privacy"), g.Text("Privacy Policy"))),
			Li(A(Href("/terms"), g.Text("Terms & Conditions"))),
			Li(A(Href("/feedback"), g.Text("Leave Feedback"))),
		),
	)
}

func sectionHeading(id, text string) g.Node {
	return H2(ID(id+"-heading"), Class("section-heading"), g.Text(text))
}
