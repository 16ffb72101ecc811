// Package argv parses collaborator argument vectors where flags and
// positionals may be interleaved, which stdlib flag does not do on its own.
package argv

import "flag"

// ParseInterleaved runs fs over args repeatedly, collecting positionals so
// flags may appear before or after them.
func ParseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positionals []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positionals, nil
		}
		positionals = append(positionals, fs.Arg(0))
		rest = fs.Args()[1:]
	}
}
