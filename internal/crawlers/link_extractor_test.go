package crawlers

import (
	"reflect"
	"testing"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

func mustParts(t *testing.T, raw string) *models.URLParts {
	t.Helper()
	parts, err := models.SplitURL(raw)
	if err != nil {
		t.Fatalf("SplitURL(%q) error = %v", raw, err)
	}
	return parts.Canonical()
}

func TestResolveLink(t *testing.T) {
	root := mustParts(t, "http://example.test/")
	docs := mustParts(t, "http://example.test/docs/page.html")
	bare := mustParts(t, "http://example.test")

	tests := []struct {
		name    string
		href    string
		current *models.URLParts
		want    string
		wantOK  bool
	}{
		{"规则1 根相对", "/about", docs, "http://example.test/about", true},
		{"规则1 双斜杠", "//cdn.test/x.js", root, "http://example.test//cdn.test/x.js", true},
		{"规则2 片段", "#top", docs, "http://example.test/docs/page.html#top", true},
		{"规则3 http绝对", "http://other.test/x", docs, "http://other.test/x", true},
		{"规则3 大写协议", "HTTP://other.test/x", docs, "HTTP://other.test/x", true},
		{"规则4 根目录相对", "contact.html", root, "http://example.test/contact.html", true},
		{"规则4 不去掉文件名", "next.html", docs, "http://example.test/docs/page.htmlnext.html", true},
		{"规则4 空路径按根处理", "a.html", bare, "http://example.test/a.html", true},
		{"规则4 上级目录", "../up.html", root, "http://example.test/../up.html", true},
		{"规则5 https", "https://secure.test/", docs, "", false},
		{"规则5 mailto", "mailto:a@example.test", docs, "", false},
		{"规则5 javascript", "javascript:void(0)", docs, "", false},
		{"空href", "", docs, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveLink(tt.href, tt.current)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ResolveLink(%q) = %q, %v, want %q, %v", tt.href, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLinkExtractor_ExtractHrefs(t *testing.T) {
	page := `<html><body>
<A HREF="/upper">大写标签</A>
<a class="nav" href='single.html'>单引号</a>
<a
  id="x" href = "spaced.html">换行属性</a>
<a name="anchor">无href</a>
<link href="/style.css">
<abbr href="/not-anchor">不是锚点</abbr>
<a data-href="/data" href="/real">data属性在前</a>
<a title="a>b" href="/after">属性值含大于号</a>
<a title='x > y' onclick="f('>')" href="/quoted">混合引号</a>
</body></html>`

	got := NewLinkExtractor().ExtractHrefs(page)
	want := []string{"/upper", "single.html", "spaced.html", "/real", "/after", "/quoted"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractHrefs() = %v, want %v", got, want)
	}
}

func TestLinkExtractor_Extract(t *testing.T) {
	page := `<a href="/about">About</a> <a href="contact.html">Contact</a> <a href="mailto:x@y">Mail</a>`

	got := NewLinkExtractor().Extract(page, mustParts(t, "http://example.test/"))
	want := []string{"http://example.test/about", "http://example.test/contact.html"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %v, want %v", got, want)
	}
}
