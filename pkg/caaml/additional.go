package caaml

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

// capture returns the children of a customData element as XML text. Each
// fragment gets the namespace declarations it uses from the enclosing
// document so that it parses on its own. Indentation whitespace is dropped.
func capture(custom *etree.Element) *snowprofile.AdditionalData {
	if custom == nil {
		return nil
	}
	var b strings.Builder
	decls := namespaceDecls(custom)
	for _, c := range custom.ChildElements() {
		frag := c.Copy()
		declare(frag, decls)
		stripIndent(frag)

		doc := etree.NewDocument()
		doc.SetRoot(frag)
		s, err := doc.WriteToString()
		if err != nil {
			log.Warnw("could not serialize custom data", "element", c.FullTag(), "error", err)
			continue
		}
		b.WriteString(s)
	}
	data := b.String()
	if data == "" {
		data = strings.TrimSpace(custom.Text())
	}
	if data == "" {
		return nil
	}
	return &snowprofile.AdditionalData{Data: data, Origin: snowprofile.OriginCAAML6}
}

// namespaceDecls collects the xmlns attributes in scope at e, nearest first.
func namespaceDecls(e *etree.Element) []etree.Attr {
	var decls []etree.Attr
	seen := map[string]bool{}
	for p := e; p != nil; p = p.Parent() {
		for _, a := range p.Attr {
			prefix, ok := declaredPrefix(a)
			if !ok || seen[prefix] {
				continue
			}
			seen[prefix] = true
			decls = append(decls, a)
		}
	}
	return decls
}

// declaredPrefix returns the prefix bound by a namespace declaration, ""
// for the default namespace.
func declaredPrefix(a etree.Attr) (string, bool) {
	switch {
	case a.Space == "xmlns":
		return a.Key, true
	case a.Space == "" && a.Key == "xmlns":
		return "", true
	}
	return "", false
}

// usedPrefixes returns the prefixes of e and its descendants, "" standing
// for unprefixed elements.
func usedPrefixes(e *etree.Element, used map[string]bool) {
	used[e.Space] = true
	for _, a := range e.Attr {
		if _, ok := declaredPrefix(a); !ok && a.Space != "" && a.Space != "xml" {
			used[a.Space] = true
		}
	}
	for _, c := range e.ChildElements() {
		usedPrefixes(c, used)
	}
}

// declare adds the declarations from decls that e uses but does not carry.
func declare(e *etree.Element, decls []etree.Attr) {
	used := map[string]bool{}
	usedPrefixes(e, used)
	own := map[string]bool{}
	for _, a := range e.Attr {
		if prefix, ok := declaredPrefix(a); ok {
			own[prefix] = true
		}
	}
	for _, d := range decls {
		prefix, _ := declaredPrefix(d)
		if used[prefix] && !own[prefix] {
			e.CreateAttr(d.FullKey(), d.Value)
		}
	}
}

func stripIndent(e *etree.Element) {
	if len(e.ChildElements()) == 0 {
		return
	}
	for i := len(e.Child) - 1; i >= 0; i-- {
		if cd, ok := e.Child[i].(*etree.CharData); ok && strings.TrimSpace(cd.Data) == "" {
			e.RemoveChildAt(i)
		}
	}
	for _, c := range e.ChildElements() {
		stripIndent(c)
	}
}

// appendCustomData writes additional data back under a customData element
// of parent. XML fragments are re-parsed and inserted as elements; other
// data is written as text.
func appendCustomData(parent *etree.Element, ad *snowprofile.AdditionalData) {
	if ad.Empty() {
		return
	}
	custom := parent.CreateElement("caaml:customData")
	if ad.Origin != "" && ad.Origin != snowprofile.OriginCAAML6 {
		custom.SetText(ad.Data)
		return
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString("<fragments>" + ad.Data + "</fragments>"); err != nil || doc.Root() == nil {
		log.Debugw("custom data is not XML, writing it as text", "error", err)
		custom.SetText(ad.Data)
		return
	}
	children := doc.Root().ChildElements()
	if len(children) == 0 {
		custom.SetText(ad.Data)
		return
	}
	for _, c := range children {
		custom.AddChild(c)
	}
}
