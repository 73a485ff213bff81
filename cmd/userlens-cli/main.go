package main

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
	_ "github.com/joho/godotenv/autoload"
)

type commands struct {
	Analyze  *AnalyzeCommand
	Keywords *KeywordsCommand
}

func buildParser() (*goflags.Parser, *commands) {
	parser := goflags.NewParser(nil, goflags.Default)
	parser.Name = "userlens-cli"
	parser.LongDescription = "Analyse a reddit user's public activity from the command line."

	cmds := &commands{
		Analyze:  &AnalyzeCommand{out: os.Stdout, newAnalyzer: newRedditAnalyzer},
		Keywords: &KeywordsCommand{in: os.Stdin, out: os.Stdout},
	}

	parser.AddCommand("analyze", "Analyse a reddit user", "Fetch a user's posts and comments and print the report as JSON.", cmds.Analyze)
	parser.AddCommand("keywords", "Extract keywords from text", "Run the keyword extractor over a file, one text per line, or stdin.", cmds.Keywords)

	return parser, cmds
}

func run(args []string) error {
	parser, _ := buildParser()
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if _, ok := err.(*goflags.Error); !ok {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
