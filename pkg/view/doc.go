// Package view renders server-side templates.
//
// An [Engine] reads templates from an fs.FS. A template name resolves to the
// first existing file among name, name.html and name.md:
//
//	views := view.NewDirEngine("views")
//	page := view.New(views, "users/show", map[string]any{"User": user})
//	page.Set("Title", "Profile")
//
//	if err := page.Render(ctx, w); err != nil {
//		...
//	}
//
// HTML templates use html/template. Markdown templates are executed with
// text/template, converted with goldmark and sanitized with bluemonday.
// Templates can render each other with the include function:
//
//	{{ include "partials/header" . }}
//
// Included templates render with the caller's context. Nesting deeper than
// [MaxIncludeDepth] fails with [ErrIncludeDepth].
//
// A [View] implements templ.Component. [View.String] swallows rendering
// errors and returns ""; use [View.RenderString] to see them.
package view
