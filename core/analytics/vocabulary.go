package analytics

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"crateaudit/model"
)

// IssueVocabulary is the versioned set of issue types shared with the
// analyzer. Issue types outside the vocabulary are invisible to aggregation.
type IssueVocabulary struct {
	Version string
	types   []string
	known   map[string]struct{}
}

// DefaultVocabulary 与分析器约定的初始问题类型
var DefaultVocabulary = NewIssueVocabulary("v1",
	model.IssueLowBitrate,
	model.IssueMissingCues,
	model.IssueBrokenLink,
	model.IssueDuplicate,
	model.IssueDynamicTempo,
)

// NewIssueVocabulary builds a vocabulary, dropping blanks and duplicates but
// keeping the first-seen order.
func NewIssueVocabulary(version string, types ...string) IssueVocabulary {
	v := IssueVocabulary{
		Version: version,
		types:   make([]string, 0, len(types)),
		known:   make(map[string]struct{}, len(types)),
	}
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := v.known[t]; ok {
			continue
		}
		v.known[t] = struct{}{}
		v.types = append(v.types, t)
	}
	return v
}

// Extend returns a new vocabulary with the extra types appended.
// The receiver is left untouched.
func (v IssueVocabulary) Extend(version string, extra ...string) IssueVocabulary {
	all := make([]string, 0, len(v.types)+len(extra))
	all = append(all, v.types...)
	all = append(all, extra...)
	return NewIssueVocabulary(version, all...)
}

// Contains 判断问题类型是否在词表中
func (v IssueVocabulary) Contains(issueType string) bool {
	_, ok := v.known[issueType]
	return ok
}

// Types returns a copy of the issue types in declaration order.
func (v IssueVocabulary) Types() []string {
	out := make([]string, len(v.types))
	copy(out, v.types)
	return out
}

// Len 返回词表大小
func (v IssueVocabulary) Len() int {
	return len(v.types)
}

// Key identifies the vocabulary contents, not just its declared version:
// "v1-1a2b3c4d". Two vocabularies with the same types in any order share a key.
func (v IssueVocabulary) Key() string {
	types := v.Types()
	sort.Strings(types)
	h := fnv.New32a()
	for _, t := range types {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%s-%08x", v.Version, h.Sum32())
}
