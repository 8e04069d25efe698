package main

import (
	"log"

	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	kingpin.Version("0.1.0")
	kingpin.Parse()

	p := &Program{}
	if err := p.Init(); nil != err {
		log.Fatalln(err)
	}
	defer p.Deinit()

	if err := p.Run(); nil != err {
		log.Fatalln(err)
	}
	p.Report()
}
