package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextContentAndRenderedText(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="x">  Price:
		<span>$10</span><script>ignored()</script><span hidden>old</span><br>now</div></body></html>`)
	div := doc.Find("#x").Get(0)

	assert.Contains(t, TextContent(div), "ignored()")
	assert.Contains(t, TextContent(div), "old")
	assert.Equal(t, "Price: $10 now", RenderedText(div))
}

func TestDirectText(t *testing.T) {
	doc := mustParse(t, `<html><body><div id="x"> US$ <b>ignored</b> 12.99 </div></body></html>`)
	div := doc.Find("#x").Get(0)
	assert.Equal(t, []string{"US$", "12.99"}, DirectText(div))
}

func TestNodeHelpers(t *testing.T) {
	doc := mustParse(t, `<html><body><div class="outer"><p class="inner"><i>x</i></p></div></body></html>`)
	i := doc.Find("i").Get(0)
	outer := doc.Find(".outer").Get(0)

	require.NotNil(t, Closest(i, "outer"))
	assert.Equal(t, outer, Closest(i, "outer"))
	assert.Nil(t, Closest(i, "missing"))
	assert.True(t, Contains(outer, i))
	assert.False(t, Contains(i, outer))
	assert.NotNil(t, ChildWithClass(outer, "inner"))
	assert.Nil(t, ChildWithClass(doc.Body(), "inner"))
	assert.NotNil(t, DescendantWithClass(doc.Body(), "inner"))
	assert.Equal(t, outer, ParentElement(doc.Find(".inner").Get(0)))

	el := NewElement("span", "class", "a b", "data-x", "1")
	assert.True(t, HasClass(el, "b"))
	v, ok := Attr(el, "data-x")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	assert.Len(t, ElementChildren(doc.Find(".outer").Get(0)), 1)
	assert.Equal(t, "x", TextContent(i.FirstChild))
	assert.Equal(t, "", TextContent(nil))
	assert.Nil(t, Closest(nil, "outer"))
	assert.False(t, HasClass(i.FirstChild, "outer"))
	assert.Nil(t, ChildWithClass(NewText("x"), "outer"))
}
