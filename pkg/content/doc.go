/*
Package content provides the document index behind the desktop.

Documents are markdown files with YAML front matter, split into two
collections:

	projects/*.md   (type "project")
	blog/*.md       (type "post")

An optional about.md at the root feeds the About window.

Bodies may contain components written as upper-case tags, for example:

	<Callout type="warn">Mind the gap.</Callout>
	<Figure src="/img/shot.png" alt="Screenshot" caption="The desktop" />
	<Tabs><Tab id="go" label="Go">...</Tab></Tabs>
	Press <Kbd>Ctrl</Kbd> + <Kbd>C</Kbd>.

The supported set is Callout, Note, Warning, Figure, Tabs/Tab, Details,
TwoColumn (with TwoColumn.Left and TwoColumn.Right, or Column), Files,
Badge, Kbd and Stat. Unknown components render their children.

Example usage:

	ix, err := content.Load(os.DirFS("content"))
	if err != nil {
		// handle error
	}
	doc, err := ix.GetBySlug(content.TypePost, "hello-world")
	if errors.Is(err, content.ErrNotFound) {
		// show placeholder
	}
*/
package content
