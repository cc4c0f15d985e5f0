package tmi

import "strings"

// tagIndex is one key=value pair of an IRCv3 message-tags section, as
// indices into the message's Buffer. A tag with no '=' still gets a
// tagIndex; its Value is an empty (but present) range, which is how an
// empty tag value is told apart from a missing tag.
type tagIndex struct {
	Key   Index
	Value Index
}

// TagIndices is the ordered list of tags parsed from a message's leading
// "@key=val;key2=val2" section, preserving wire order and duplicate keys.
// A plain map[string]string would lose both: an index/zero-copy parser
// needs to remember ordering, and IRCv3 explicitly permits duplicate tag
// keys.
type TagIndices struct {
	buf  Buffer
	tags []tagIndex
}

// Len reports the number of tags present.
func (t *TagIndices) Len() int {
	if t == nil {
		return 0
	}
	return len(t.tags)
}

// Has reports whether key was present in the tags section, regardless of
// whether it carried a value.
func (t *TagIndices) Has(key string) bool {
	if t == nil {
		return false
	}
	for _, tg := range t.tags {
		if tg.Key.Slice(t.buf) == key {
			return true
		}
	}
	return false
}

// Get returns the unescaped value of the first tag matching key, and
// whether key was present at all. A present-but-empty tag returns ("", true).
func (t *TagIndices) Get(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, tg := range t.tags {
		if tg.Key.Slice(t.buf) == key {
			return unescapeTagValue(tg.Value.Slice(t.buf)), true
		}
	}
	return "", false
}

// GetDefault returns the unescaped value of key, or def if key was absent.
func (t *TagIndices) GetDefault(key, def string) string {
	if v, ok := t.Get(key); ok {
		return v
	}
	return def
}

// Keys returns the tag keys in wire order. Mainly useful for debugging and
// for enumerating USERNOTICE's msg-param-* tags.
func (t *TagIndices) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.tags))
	for i, tg := range t.tags {
		out[i] = tg.Key.Slice(t.buf)
	}
	return out
}

// unescaper reverses the IRCv3 tag-value escaping:
// "\:" -> ";", "\s" -> " ", "\\" -> "\", "\r" -> CR, "\n" -> LF.
//
// Order matters: the trailing bare "\" -> "" rule must run last, after the
// two-character escapes have already been consumed.
var tagUnescaper = strings.NewReplacer(
	"\\:", ";",
	"\\s", " ",
	"\\\\", "\\",
	"\\r", "\r",
	"\\n", "\n",
	"\\", "",
)

func unescapeTagValue(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	return tagUnescaper.Replace(s)
}

// tagEscaper is the inverse of tagUnescaper, used when encoding tags on
// outbound messages such as a client-side reply-parent-msg-id tag.
var tagEscaper = strings.NewReplacer(
	"\\", "\\\\",
	";", "\\:",
	" ", "\\s",
	"\r", "\\r",
	"\n", "\\n",
)

func escapeTagValue(s string) string {
	return tagEscaper.Replace(s)
}
