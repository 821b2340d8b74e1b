// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalogued issue.
type Id int

const (
	UnsupportedPlatformId Id = iota + 1
	GitNotFoundId
	NetworkUnavailableId
	MalformedManifestId
	InstallFailedId
	UpdateFailedId
	LocalSourceNotFoundId
	MirrorFailedId
	ConfigLoadFailedId
	PermissionDeniedId
)

type (
	// MarkdownMsg is Markdown text rendered for the terminal.
	MarkdownMsg string

	// HttpLink is an external reference shown under "See also".
	HttpLink string

	// Issue is a catalogued failure with longer guidance.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

const repoLink HttpLink = "https://github.com/moorestech/mooresUnityMCP"

// render is swapped in tests.
var render = glamour.Render

var issues = map[Id]*Issue{
	UnsupportedPlatformId: {
		id: UnsupportedPlatformId,
		mdMsg: `
# Unsupported platform

The companion server can only be installed on Windows, macOS and Linux.

## Things you can try
- Point the installer at an explicit directory instead:
~~~
$ mcpsetup --root /path/to/install ensure
~~~`,
	},
	GitNotFoundId: {
		id: GitNotFoundId,
		mdMsg: `
# git was not found

Installing and updating the server runs git in a sparse checkout.

## Things you can try
- Install git and make sure it is on your PATH
- Or set the executable explicitly in config.cue:
~~~cue
tools: git: "/usr/local/bin/git"
~~~`,
		docLinks: []HttpLink{"https://git-scm.com/downloads"},
	},
	NetworkUnavailableId: {
		id: NetworkUnavailableId,
		mdMsg: `
# Could not reach the upstream manifest

The latest server version is read from the published pyproject.toml.

## Things you can try
- Check your network connection and proxy settings
- Raise the timeout or retry count:
~~~cue
remote: {
	timeout: "30s"
	retries: 5
}
~~~`,
		docLinks: []HttpLink{repoLink},
	},
	MalformedManifestId: {
		id: MalformedManifestId,
		mdMsg: `
# The installed server looks corrupted

A pyproject.toml exists, but its version line could not be read.
Nothing was reinstalled automatically.

## Things you can try
- Discard local changes and pull again:
~~~
$ mcpsetup force-update
~~~`,
	},
	InstallFailedId: {
		id: InstallFailedId,
		mdMsg: `
# Installing the server failed

The installation root was left in place so the next run can resume.

## Things you can try
- Re-run with verbose logging to see the failing git step:
~~~
$ mcpsetup --verbose ensure
~~~
- Check that the repository URL and branch in config.cue are correct`,
		docLinks: []HttpLink{repoLink},
	},
	UpdateFailedId: {
		id: UpdateFailedId,
		mdMsg: `
# Updating the server failed

git pull did not complete, usually because of local modifications.

## Things you can try
- Discard local changes and pull again:
~~~
$ mcpsetup force-update
~~~`,
	},
	LocalSourceNotFoundId: {
		id: LocalSourceNotFoundId,
		mdMsg: `
# No local server folder found

sync-local looks for the server folder a fixed number of levels above the
project data directory.

## Things you can try
- Pass the project data directory explicitly:
~~~
$ mcpsetup sync-local --data-dir /path/to/Project/Assets
~~~
- Or pass the source folder itself with --source`,
	},
	MirrorFailedId: {
		id: MirrorFailedId,
		mdMsg: `
# Copying the local server failed

## Things you can try
- Use the built-in copier instead of rsync or robocopy:
~~~
$ mcpsetup sync-local --strategy native
~~~`,
	},
	ConfigLoadFailedId: {
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

## Things you can try
- Print a valid configuration to start from:
~~~
$ mcpsetup config dump
~~~
- Check MCPSETUP_* environment variables for typos`,
	},
	PermissionDeniedId: {
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied

The installation root or one of its files is not writable by this user.

## Things you can try
- Install into a directory you own:
~~~
$ mcpsetup --root ~/mcp ensure
~~~`,
	},
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int { return int(a.id - b.id) })
}

// Id returns the issue identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the reference links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the guidance with the glamour style at stylePath
// ("dark", "light", "notty", or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}
