package core

import (
	"fmt"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
)

// LoadConf fills a Conf from command-line arguments and environment
// variables, preferring real environment variables over a ".env" file
// when one is present. Pass nil args to read os.Args.
func LoadConf(args []string) (*Conf, error) {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	conf := &Conf{}
	parser := flags.NewParser(conf, flags.Default)
	parser.ShortDescription = "noise-adaptive circuit optimizer"
	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		return nil, err
	}
	return conf, nil
}
