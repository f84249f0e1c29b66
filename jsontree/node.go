// Package jsontree provides an order-preserving representation of arbitrary
// JSON values. Index files and existing stub documents are loosely structured,
// and both the etiology flattener and merge-on-rebuild depend on the order in
// which object members appear in the source file.
package jsontree

import (
	"encoding/json"
	"strconv"
)

// Kind identifies the JSON type held by a Node
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// Member is a single key/value pair of an object, in document order
type Member struct {
	Key   string
	Value *Node
}

// Node is one JSON value. The zero value is JSON null.
type Node struct {
	kind    Kind
	boolean bool
	number  json.Number
	str     string
	items   []*Node
	members []Member
	index   map[string]int
}

// NewNull returns a JSON null
func NewNull() *Node { return &Node{kind: Null} }

// NewBool returns a JSON boolean
func NewBool(b bool) *Node { return &Node{kind: Bool, boolean: b} }

// NewString returns a JSON string
func NewString(s string) *Node { return &Node{kind: String, str: s} }

// NewNumber returns a JSON number holding the literal n
func NewNumber(n json.Number) *Node { return &Node{kind: Number, number: n} }

// NewInt returns a JSON number for an integer value
func NewInt(i int) *Node { return NewNumber(json.Number(strconv.Itoa(i))) }

// NewArray returns a JSON array holding items
func NewArray(items ...*Node) *Node {
	return &Node{kind: Array, items: append([]*Node{}, items...)}
}

// NewStringArray returns a JSON array of strings
func NewStringArray(values ...string) *Node {
	n := &Node{kind: Array, items: make([]*Node, 0, len(values))}
	for _, v := range values {
		n.items = append(n.items, NewString(v))
	}
	return n
}

// NewObject returns an empty JSON object
func NewObject() *Node {
	return &Node{kind: Object, index: make(map[string]int)}
}

// Kind reports the JSON type of n. A nil node is null.
func (n *Node) Kind() Kind {
	if n == nil {
		return Null
	}
	return n.kind
}

func (n *Node) IsObject() bool { return n.Kind() == Object }
func (n *Node) IsArray() bool  { return n.Kind() == Array }
func (n *Node) IsString() bool { return n.Kind() == String }
func (n *Node) IsNull() bool   { return n.Kind() == Null }

// Str returns the string value and whether n is a string
func (n *Node) Str() (string, bool) {
	if n.Kind() != String {
		return "", false
	}
	return n.str, true
}

// BoolValue returns the boolean value and whether n is a boolean
func (n *Node) BoolValue() (bool, bool) {
	if n.Kind() != Bool {
		return false, false
	}
	return n.boolean, true
}

// NumberValue returns the number literal and whether n is a number
func (n *Node) NumberValue() (json.Number, bool) {
	if n.Kind() != Number {
		return "", false
	}
	return n.number, true
}

// Len returns the number of array items or object members
func (n *Node) Len() int {
	switch n.Kind() {
	case Array:
		return len(n.items)
	case Object:
		return len(n.members)
	}
	return 0
}

// Items returns the elements of an array, nil for any other kind
func (n *Node) Items() []*Node {
	if n.Kind() != Array {
		return nil
	}
	return n.items
}

// Append adds values at the end of an array
func (n *Node) Append(values ...*Node) {
	if n.Kind() != Array {
		return
	}
	n.items = append(n.items, values...)
}

// Members returns the members of an object in document order
func (n *Node) Members() []Member {
	if n.Kind() != Object {
		return nil
	}
	return n.members
}

// Keys returns the member keys of an object in document order
func (n *Node) Keys() []string {
	if n.Kind() != Object {
		return nil
	}
	keys := make([]string, len(n.members))
	for i, m := range n.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the value stored under key, or nil
func (n *Node) Get(key string) *Node {
	if n.Kind() != Object {
		return nil
	}
	if i, ok := n.index[key]; ok {
		return n.members[i].Value
	}
	return nil
}

// Has reports whether the object has a member named key
func (n *Node) Has(key string) bool {
	if n.Kind() != Object {
		return false
	}
	_, ok := n.index[key]
	return ok
}

// Set stores value under key. An existing key keeps its position.
func (n *Node) Set(key string, value *Node) {
	if n.Kind() != Object {
		return
	}
	if value == nil {
		value = NewNull()
	}
	if i, ok := n.index[key]; ok {
		n.members[i].Value = value
		return
	}
	n.index[key] = len(n.members)
	n.members = append(n.members, Member{Key: key, Value: value})
}

// Delete removes key from the object
func (n *Node) Delete(key string) {
	if n.Kind() != Object {
		return
	}
	i, ok := n.index[key]
	if !ok {
		return
	}
	n.members = append(n.members[:i], n.members[i+1:]...)
	delete(n.index, key)
	for j := i; j < len(n.members); j++ {
		n.index[n.members[j].Key] = j
	}
}

// Clone returns a deep copy of n
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{kind: n.kind, boolean: n.boolean, number: n.number, str: n.str}
	switch n.kind {
	case Array:
		c.items = make([]*Node, len(n.items))
		for i, it := range n.items {
			c.items[i] = it.Clone()
		}
	case Object:
		c.index = make(map[string]int, len(n.members))
		c.members = make([]Member, len(n.members))
		for i, m := range n.members {
			c.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
			c.index[m.Key] = i
		}
	}
	return c
}

// Equal reports whether a and b hold structurally equal values.
// Object member order is significant.
func Equal(a, b *Node) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case Null:
		return true
	case Bool:
		return a.boolean == b.boolean
	case Number:
		return a.number == b.number
	case String:
		return a.str == b.str
	case Array:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.members) != len(b.members) {
			return false
		}
		for i := range a.members {
			if a.members[i].Key != b.members[i].Key || !Equal(a.members[i].Value, b.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
