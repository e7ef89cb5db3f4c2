package pages

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type legalSection struct {
	heading string
	body    string
}

func legalPage(owner, title, contactEmail string, sections []legalSection) g.Node {
	return Layout(PageConfig{Title: title + " | " + owner}, owner,
		Article(
			Class("legal"),
			H1(g.Text(title)),
			g.Map(sections, func(s legalSection) g.Node {
				return g.Group([]g.Node{H2(g.Text(s.heading)), P(g.Text(s.body))})
			}),
			H2(g.Text("Contact")),
			P(g.Text("Questions can be sent to "), A(Href("mailto:"+contactEmail), g.Text(contactEmail)), g.Text(".")),
		),
	)
}

func PrivacyPage(owner, contactEmail string) g.Node {
	return legalPage(owner, "Privacy Policy", contactEmail, []legalSection{
		{"Information we collect", "When you use the contact form we store your name, email address and message. When you leave a testimonial we store your name, role, the text you write or the video you record, and the time of submission."},
		{"How we use it", "Contact messages are used only to reply to you. Testimonials are reviewed before anything is published on this site."},
		{"Camera and microphone", "The video recorder asks your browser for camera and microphone access only after you choose to record. The stream is released as soon as you stop, cancel or leave the page."},
		{"Storage", "Records are kept in our database and recorded videos in private object storage. We do not sell or share your information with third parties."},
	})
}

func TermsPage(owner, contactEmail string) g.Node {
	return legalPage(owner, "Terms & Conditions", contactEmail, []legalSection{
		{"Use of this site", "Content on this site is provided for information about our voice AI services. Demo recordings are illustrative."},
		{"Testimonials", "By submitting a testimonial you grant us permission to display it, with the name and role you provide, on this site and in marketing material. You may ask us to remove it at any time."},
		{"Estimates", "Figures produced by the ROI calculator are estimates and not a guarantee of results."},
	})
}
