package pages

import (
	"fmt"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/lahiru-voiceai/site/internal/content"
	"github.com/lahiru-voiceai/site/internal/roi"
)

// HomeData is everything the landing page renders.
type HomeData struct {
	Site      *content.Site
	Feed      []content.FeedItem
	AudioMode string
	ROI       roi.Estimate
}

func HomePage(d HomeData) g.Node {
	s := d.Site
	return Layout(PageConfig{}, s.Owner.Name,
		Hero(s.Hero),
		About(s.Owner),
		VoiceDemos(s.Demos, d.AudioMode),
		UseCases(s.UseCases),
		FeaturedWork(s.CaseStudies),
		ROICalculator(d.ROI),
		Testimonials(d.Feed),
		Consultation(s.Consultation),
		ContactForm(),
	)
}

func Hero(h content.Hero) g.Node {
	return Section(
		ID("hero"), Class("hero"),
		H1(
			Span(g.Text(h.Headline)),
			Span(Class("highlight"), g.Text(h.Highlight)),
		),
		P(Class("lead"), g.Text(h.Lead)),
		Div(
			Class("actions"),
			A(Class("btn btn-primary"), Href("#contact"), g.Text("Book Strategy Session")),
			A(Class("btn btn-ghost"), Href("#demos"), g.Text("Hear the Agents")),
		),
	)
}

func About(o content.Owner) g.Node {
	return Section(
		ID("about"), Class("about"), g.Attr("aria-labelledby", "about-heading"),
		H2(ID("about-heading"), g.Text("Hi, I'm "), Span(Class("highlight"), g.Text(o.Name))),
		P(Class("tagline"), g.Text(o.Tagline)),
		g.Map(o.Bio, func(p string) g.Node { return P(g.Text(p)) }),
	)
}

// VoiceDemos renders one audio player per demo. Players share the page's
// playback slot through data-player, so starting one pauses the others.
func VoiceDemos(demos []content.VoiceDemo, mode string) g.Node {
	return Section(
		ID("demos"), Class("demos"), g.Attr("aria-labelledby", "demos-heading"),
		sectionHeading("demos", "Hear the Agents"),
		Div(
			Class("grid"),
			g.Map(demos, func(d content.VoiceDemo) g.Node {
				return Article(
					Class("demo-card"),
					H3(g.Text(d.Title)),
					P(Class("subtitle"), g.Text(d.Subtitle)),
					Audio(
						Data("player", "demo-"+d.ID),
						Data("fallback", d.Audio.Fallback),
						g.Attr("controls"),
						g.Attr("preload", "none"),
						Src(d.Audio.URL(mode)),
						g.Attr("aria-label", "Play "+d.Title+" demo"),
					),
					P(Class("quote"), g.Textf("%q", d.Quote)),
				)
			}),
		),
	)
}

func UseCases(cases []content.UseCase) g.Node {
	return Section(
		ID("use-cases"), Class("use-cases"), g.Attr("aria-labelledby", "use-cases-heading"),
		sectionHeading("use-cases", "Built for Your Front Desk"),
		Div(
			Class("tabs"), g.Attr("role", "tablist"),
			g.Map(cases, func(u content.UseCase) g.Node {
				return Button(Type("button"), g.Attr("role", "tab"), Data("tab", u.ID), g.Text(u.Title))
			}),
		),
		g.Map(cases, func(u content.UseCase) g.Node {
			return Div(
				Class("use-case"), ID("use-case-"+u.ID), g.Attr("role", "tabpanel"),
				Video(
					Data("player", "use-case-"+u.ID),
					g.Attr("controls"), g.Attr("playsinline"), g.Attr("preload", "none"),
					g.Attr("poster", u.Thumbnail),
					Src(u.Video),
				),
				H3(g.Text(u.Title)),
				P(g.Text(u.Description)),
				Span(Class("duration"), g.Text(u.Duration)),
			)
		}),
	)
}

func FeaturedWork(studies []content.CaseStudy) g.Node {
	return Section(
		ID("work"), Class("work"), g.Attr("aria-labelledby", "work-heading"),
		sectionHeading("work", "Featured Architecture"),
		g.Map(studies, func(c content.CaseStudy) g.Node {
			return Article(
				Class("case-study"),
				Img(Src(c.Image), Alt(c.Title), g.Attr("loading", "lazy")),
				P(Class("category"), g.Text(c.Category+" / "+c.SubCategory)),
				H3(g.Text(c.Title)),
				P(g.Text(c.Description)),
				g.If(c.Label != "", Span(Class("label"), g.Text(c.Label))),
				g.If(c.AudioURL != "", Audio(
					Data("player", "case-"+slug(c.Title)),
					g.Attr("controls"), g.Attr("preload", "none"), Src(c.AudioURL),
				)),
				g.If(c.AudioURL == "", A(Href(c.LinkHref), g.Text(c.LinkText))),
			)
		}),
	)
}

// ROICalculator renders the server-side estimate; site.js refreshes it from /api/roi.
func ROICalculator(e roi.Estimate) g.Node {
	return Section(
		ID("roi"), Class("roi"), g.Attr("aria-labelledby", "roi-heading"),
		H2(ID("roi-heading"), g.Text("The Cost of "), Span(Class("highlight"), g.Text("Inaction"))),
		Form(
			ID("roi-form"), Method("get"), Action("/api/roi"),
			Label(For("call-volume-input"), g.Text("Monthly call volume")),
			Input(ID("call-volume-input"), Name("volume"), Type("number"),
				Min(fmt.Sprint(roi.MinVolume)), Max(fmt.Sprint(roi.MaxVolume)), Value(fmt.Sprint(e.MonthlyCalls))),
			Label(For("human-cost-input"), g.Text("Human cost per call ($)")),
			Input(ID("human-cost-input"), Name("cost"), Type("number"), g.Attr("step", "0.5"),
				Min(fmt.Sprint(roi.MinCost)), Max(fmt.Sprint(roi.MaxCost)), Value(fmt.Sprint(e.CostPerCall))),
		),
		Div(
			Class("roi-result"), g.Attr("aria-live", "polite"),
			P(g.Text("Estimated monthly savings")),
			Strong(ID("roi-savings"), g.Textf("$%s", groupThousands(e.Savings))),
			P(Class("note"), g.Textf("Voice agent cost: $%.2f per call", e.AICostPerCall)),
		),
	)
}

func Testimonials(feed []content.FeedItem) g.Node {
	return Section(
		ID("testimonials"), Class("testimonials"), g.Attr("aria-labelledby", "testimonials-heading"),
		sectionHeading("testimonials", "What Clients Say"),
		Div(
			Class("masonry"),
			g.Map(feed, testimonialCard),
		),
		A(Class("btn btn-ghost"), Href("/feedback"), g.Text("Share your experience")),
	)
}

func testimonialCard(t content.FeedItem) g.Node {
	if t.Kind == "video" {
		return Article(
			Class("card card-video"),
			Video(
				Data("player", "testimonial-"+t.ID),
				g.Attr("controls"), g.Attr("playsinline"), g.Attr("preload", "none"),
				g.Attr("poster", t.Thumbnail), Src(t.VideoURL),
			),
			P(Class("author"), g.Text(t.Author)),
			g.If(t.Role != "", P(Class("role"), g.Text(t.Role))),
			g.If(t.Duration != "", Span(Class("duration"), g.Text(t.Duration))),
		)
	}
	return Article(
		Class("card card-"+t.Kind),
		g.If(t.Avatar != "", Img(Src(t.Avatar), Alt(t.Author), g.Attr("loading", "lazy"))),
		P(Class("content"), g.Text(t.Content)),
		P(Class("author"), g.Text(t.Author)),
		g.If(t.Handle != "", P(Class("handle"), g.Text(t.Handle))),
		g.If(t.Role != "", P(Class("role"), g.Text(t.Role))),
		g.If(t.Date != "", Span(Class("date"), g.Text(t.Date))),
	)
}

func Consultation(c content.Consultation) g.Node {
	return Section(
		ID("consultation"), Class("consultation"), g.Attr("aria-labelledby", "consultation-heading"),
		H2(ID("consultation-heading"), g.Textf("%d of %d slots available.", c.SlotsOpen, c.SlotsTotal)),
		P(Class("price"), g.Text(c.Price)),
		H3(g.Text("Designed for founders who:")),
		Ul(g.Map(c.Criteria, func(s string) g.Node { return Li(g.Text(s)) })),
	)
}

func ContactForm() g.Node {
	return Section(
		ID("contact"), Class("contact"), g.Attr("aria-labelledby", "contact-heading"),
		sectionHeading("contact", "Start the Conversation"),
		Form(
			ID("contact-form"), Method("post"), Action("/api/contact"),
			Label(For("contact-name"), g.Text("Name")),
			Input(ID("contact-name"), Name("name"), Type("text"), Required(), g.Attr("autocomplete", "name")),
			Label(For("contact-email"), g.Text("Email")),
			Input(ID("contact-email"), Name("email"), Type("email"), Required(), g.Attr("autocomplete", "email")),
			Label(For("contact-message"), g.Text("Message")),
			Textarea(ID("contact-message"), Name("message"), Rows("5"), Required()),
			Button(Type("submit"), Class("btn btn-primary"), g.Text("Send Message")),
			P(Class("form-status"), g.Attr("role", "status"), g.Attr("aria-live", "polite")),
		),
	)
}
