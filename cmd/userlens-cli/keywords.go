package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/kova98/userlens.api/analysis"
)

type KeywordsCommand struct {
	Args struct {
		File string `positional-arg-name:"FILE" description:"Text file to read; stdin when omitted"`
	} `positional-args:"yes"`

	in  io.Reader
	out io.Writer
}

func (c *KeywordsCommand) Execute(args []string) error {
	in := c.in
	if c.Args.File != "" && c.Args.File != "-" {
		f, err := os.Open(c.Args.File)
		if err != nil {
			return fmt.Errorf("open %s: %w", c.Args.File, err)
		}
		defer f.Close()
		in = f
	}

	var texts []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		texts = append(texts, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	for _, k := range analysis.NewKeywordExtractor(analysis.DefaultExclusions()).Extract(texts) {
		fmt.Fprintf(c.out, "%-20s %d\n", k.Word, k.Count)
	}

	return nil
}
