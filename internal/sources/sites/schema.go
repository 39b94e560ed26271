package sites

// File is the top-level structure of the sites seed file:
//
//	sites:
//	  - docs.example.com
//	  - "*.wikipedia.org"
//	  - https://blog.example.net/some/page
type File struct {
	Sites []string `yaml:"sites"`
}
