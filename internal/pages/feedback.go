package pages

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// FeedbackPage renders the testimonial form. The written tab posts text; the
// video tab is driven by capture.js over /ws/capture, with a plain file upload
// as an alternative.
func FeedbackPage(owner string, maxUploadMB int64) g.Node {
	return Layout(PageConfig{
		Title:   "Share Your Experience | " + owner,
		Scripts: []string{"/static/js/capture.js"},
	}, owner,
		Section(
			ID("feedback"), Class("feedback"), g.Attr("aria-labelledby", "feedback-heading"),
			H1(ID("feedback-heading"), g.Text("Share Your Experience")),
			Form(
				ID("feedback-form"), g.Attr("novalidate"),
				Label(For("fullName"), g.Text("Full name")),
				Input(ID("fullName"), Name("fullName"), Type("text"), g.Attr("autocomplete", "name")),
				Label(For("role"), g.Text("Role / Company")),
				Input(ID("role"), Name("role"), Type("text"), g.Attr("autocomplete", "organization-title")),

				Div(
					Class("tabs"), g.Attr("role", "tablist"),
					Button(Type("button"), g.Attr("role", "tab"), Data("tab", "written"), g.Attr("aria-selected", "true"), g.Text("Written")),
					Button(Type("button"), g.Attr("role", "tab"), Data("tab", "video"), g.Attr("aria-selected", "false"), g.Text("Video")),
				),

				Div(
					ID("panel-written"), g.Attr("role", "tabpanel"),
					Label(For("testimonial"), g.Text("Your testimonial")),
					Textarea(ID("testimonial"), Name("testimonial"), Rows("6")),
				),

				Div(
					ID("panel-video"), g.Attr("role", "tabpanel"), g.Attr("hidden"),
					Div(
						ID("recorder"), Class("recorder"), Data("mode", "idle"),
						Video(ID("live-preview"), g.Attr("muted"), g.Attr("playsinline"), g.Attr("autoplay"), g.Attr("hidden")),
						Video(ID("clip-preview"), g.Attr("controls"), g.Attr("playsinline"), g.Attr("hidden"), Data("player", "clip-preview")),
						Span(ID("rec-timer"), Class("timer"), g.Attr("aria-live", "off"), g.Attr("hidden"), g.Text("0:00")),
						Div(
							Class("recorder-controls"),
							Button(Type("button"), Data("action", "open_camera"), g.Text("Open Camera")),
							Button(Type("button"), Data("action", "start_recording"), g.Attr("hidden"), g.Text("Start Recording")),
							Button(Type("button"), Data("action", "stop_recording"), g.Attr("hidden"), g.Text("Stop")),
							Button(Type("button"), Data("action", "rerecord"), g.Attr("hidden"), g.Text("Re-record")),
							Button(Type("button"), Data("action", "remove"), g.Attr("hidden"), g.Text("Remove")),
							Button(Type("button"), Data("action", "cancel"), g.Attr("hidden"), g.Text("Cancel")),
						),
					),
					Details(
						Summary(g.Text("Or upload a video file")),
						Label(For("video-file"), g.Textf("MP4, MOV or WEBM, up to %d MB", maxUploadMB)),
						Input(ID("video-file"), Name("video"), Type("file"), g.Attr("accept", "video/mp4,video/quicktime,video/webm")),
					),
				),

				Button(ID("submit"), Type("submit"), Class("btn btn-primary"), Disabled(), g.Text("Submit")),
				P(ID("form-error"), Class("form-error"), g.Attr("role", "alert")),
			),
			Div(
				ID("thank-you"), g.Attr("hidden"),
				H2(g.Text("Thank you!")),
				P(g.Text("Your testimonial was received and will appear once reviewed.")),
				Button(Type("button"), Data("action", "reset"), g.Text("Submit another response")),
			),
		),
	)
}
