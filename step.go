package sitebuild

import (
	"fmt"
	"strings"
)

type StepKind int

const (
	KindClean StepKind = iota + 1
	KindShell
	KindCopy
	KindCssMinify
	KindHtmlMinify
	KindDeploy
	KindServe
	KindNotify
)

// Step is one unit of task execution.
// The set of steps is closed: only types in this package implement it.
type Step interface {
	Kind() StepKind
	String() string

	step()
}

type (
	// Clean removes every top-level entry of Dir.
	// With KeepHidden, dot entries (e.g. dist/.git) survive.
	Clean struct {
		Dir        string
		KeepHidden bool
	}

	// Shell runs CommandLine as an external program from Dir.
	Shell struct {
		CommandLine string
		Dir         string
	}

	Copy struct {
		SrcRoot string
		DstRoot string
	}

	FilePair struct {
		Src string
		Dst string
	}

	CssMinify struct {
		Files []FilePair
	}

	HtmlMinify struct {
		SrcRoot            string
		DstRoot            string
		RemoveComments     bool
		CollapseWhitespace bool
	}

	// Deploy publishes Dir as its own repository to Remote at Branch.
	// An empty Message is replaced with one naming the source commit.
	Deploy struct {
		Dir     string
		Remote  string
		Branch  string
		Commit  bool
		Push    bool
		Message string
	}

	// Serve previews Root on Port. A non-empty CommandLine
	// runs that file server instead of the built-in one.
	Serve struct {
		Root        string
		Port        int
		CommandLine string
	}

	Notify struct {
		SitemapUrl string
		Services   []NotifyService
	}
)

func (Clean) Kind() StepKind      { return KindClean }
func (Shell) Kind() StepKind      { return KindShell }
func (Copy) Kind() StepKind       { return KindCopy }
func (CssMinify) Kind() StepKind  { return KindCssMinify }
func (HtmlMinify) Kind() StepKind { return KindHtmlMinify }
func (Deploy) Kind() StepKind     { return KindDeploy }
func (Serve) Kind() StepKind      { return KindServe }
func (Notify) Kind() StepKind     { return KindNotify }

func (Clean) step()      {}
func (Shell) step()      {}
func (Copy) step()       {}
func (CssMinify) step()  {}
func (HtmlMinify) step() {}
func (Deploy) step()     {}
func (Serve) step()      {}
func (Notify) step()     {}

func (s Clean) String() string { return fmt.Sprintf("%s %s", s.Kind(), s.Dir) }
func (s Shell) String() string { return fmt.Sprintf("%s '%s'", s.Kind(), s.CommandLine) }
func (s Copy) String() string {
	return fmt.Sprintf("%s %s->%s", s.Kind(), s.SrcRoot, s.DstRoot)
}

func (s CssMinify) String() string {
	srcs := make([]string, len(s.Files))
	for i := range s.Files {
		srcs[i] = s.Files[i].Src
	}

	return fmt.Sprintf("%s %s", s.Kind(), strings.Join(srcs, ","))
}

func (s HtmlMinify) String() string {
	return fmt.Sprintf("%s %s->%s", s.Kind(), s.SrcRoot, s.DstRoot)
}

func (s Deploy) String() string {
	return fmt.Sprintf("%s %s->%s@%s", s.Kind(), s.Dir, s.Remote, s.Branch)
}

func (s Serve) String() string { return fmt.Sprintf("%s %s :%d", s.Kind(), s.Root, s.Port) }

func (s Notify) String() string {
	names := make([]string, len(s.Services))
	for i := range s.Services {
		names[i] = s.Services[i].Name
	}

	return fmt.Sprintf("%s %s [%s]", s.Kind(), s.SitemapUrl, strings.Join(names, ","))
}

func (k StepKind) String() string {
	switch k {
	case KindClean:
		return "clean"
	case KindShell:
		return "shell"
	case KindCopy:
		return "copy"
	case KindCssMinify:
		return "cssmin"
	case KindHtmlMinify:
		return "htmlmin"
	case KindDeploy:
		return "deploy"
	case KindServe:
		return "serve"
	case KindNotify:
		return "notify"
	}

	return "BAD_STEP"
}
