package sitebuild

const (
	SiteDirDefault      = "_site"
	DistDirDefault      = "dist"
	BuildCommandDefault = "bundle exec jekyll build"
	DeployRemoteDefault = "https://github.com/pavdmyt/pavdmyt.github.io.git"
	DeployBranchDefault = "master"
	PreviewPortDefault  = 4000
	SitemapUrlDefault   = "http://pavdmyt.com/sitemap.xml"
)

// Config holds every path, command and endpoint the tasks use.
// It is built once and handed to [NewRegistry] by value.
type Config struct {
	SiteDir      string
	DistDir      string
	BuildCommand string
	Stylesheets  []string

	DeployRemote string
	DeployBranch string

	PreviewPort    int
	PreviewCommand string

	SitemapUrl     string
	NotifyServices []NotifyService
}

func DefaultConfig() Config {
	return Config{
		SiteDir:      SiteDirDefault,
		DistDir:      DistDirDefault,
		BuildCommand: BuildCommandDefault,
		Stylesheets: []string{
			"dist/public/css/poole.css",
			"dist/public/css/lanyon.css",
		},
		DeployRemote: DeployRemoteDefault,
		DeployBranch: DeployBranchDefault,
		PreviewPort:  PreviewPortDefault,
		SitemapUrl:   SitemapUrlDefault,
	}
}
