package eip712

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Encoder is a validated, immutable view of a set of struct declarations.
// Every encoding strategy is derived once at construction, so an Encoder is
// safe for concurrent use.
type Encoder struct {
	types Types // normalized copy

	names   []string // sorted struct names
	structs map[string]int
	primary int

	fields       [][]int // descriptor index per field
	encodedTypes []string
	typeHashes   []common.Hash

	descs     []typeDesc
	descIndex map[string]int
}

// graph holds the adjacency of the struct reference graph while an Encoder
// is being built.
type graph struct {
	parents  [][]int
	children [][]int

	subtypes []map[int]struct{}
	onPath   []bool
	done     []bool
	path     []int
}

// NewEncoder validates types and derives the primary type, the encoded type
// string of every struct and the encoding strategy of every field type.
func NewEncoder(types Types) (*Encoder, error) {
	e := &Encoder{
		types:     make(Types, len(types)),
		names:     make([]string, 0, len(types)),
		structs:   make(map[string]int, len(types)),
		descIndex: make(map[string]int),
	}

	for name := range types {
		e.names = append(e.names, name)
	}
	sort.Strings(e.names)
	for i, name := range e.names {
		e.structs[name] = i
	}

	g := &graph{
		parents:  make([][]int, len(e.names)),
		children: make([][]int, len(e.names)),
	}

	for i, name := range e.names {
		seen := make(map[string]struct{}, len(types[name]))
		fields := make([]Field, 0, len(types[name]))

		for _, field := range types[name] {
			if _, dup := seen[field.Name]; dup {
				return nil, &DuplicateFieldError{Struct: name, Field: field.Name}
			}
			seen[field.Name] = struct{}{}

			typ := normalizeType(field.Type, types)
			fields = append(fields, Field{Name: field.Name, Type: typ})

			base, err := splitBase(typ)
			if err != nil {
				return nil, err
			}
			if base == name {
				return nil, &SelfReferenceError{Struct: name}
			}

			if _, isBase, err := parseBase(base); err != nil {
				return nil, err
			} else if isBase {
				continue
			}

			j, ok := e.structs[base]
			if !ok {
				return nil, &UnknownTypeError{Struct: name, Type: base}
			}
			g.link(i, j)
		}
		e.types[name] = fields
	}

	var roots []string
	for i, name := range e.names {
		if len(g.parents[i]) == 0 {
			roots = append(roots, name)
		}
	}
	switch len(roots) {
	case 0:
		return nil, ErrMissingPrimaryType
	case 1:
		e.primary = e.structs[roots[0]]
	default:
		return nil, &AmbiguousPrimaryTypeError{Candidates: roots}
	}

	if err := g.closure(e.primary, e.names); err != nil {
		return nil, err
	}

	e.encodedTypes = make([]string, len(e.names))
	e.typeHashes = make([]common.Hash, len(e.names))
	for i := range e.names {
		deps := make([]int, 0, len(g.subtypes[i]))
		for d := range g.subtypes[i] {
			deps = append(deps, d)
		}
		sort.Ints(deps)

		var sb strings.Builder
		sb.WriteString(e.encodeType(i))
		for _, d := range deps {
			sb.WriteString(e.encodeType(d))
		}
		e.encodedTypes[i] = sb.String()
		e.typeHashes[i] = crypto.Keccak256Hash([]byte(e.encodedTypes[i]))
	}

	// Every struct is addressable by name, including the primary type, which
	// no field references.
	for i, name := range e.names {
		e.descs = append(e.descs, typeDesc{name: name, kind: kindStruct, strct: i})
		e.descIndex[name] = len(e.descs) - 1
	}

	e.fields = make([][]int, len(e.names))
	for i, name := range e.names {
		e.fields[i] = make([]int, len(e.types[name]))
		for k, field := range e.types[name] {
			d, err := e.resolve(field.Type)
			if err != nil {
				return nil, err
			}
			e.fields[i][k] = d
		}
	}

	return e, nil
}

func (g *graph) link(parent, child int) {
	for _, c := range g.children[parent] {
		if c == child {
			return
		}
	}
	g.children[parent] = append(g.children[parent], child)
	g.parents[child] = append(g.parents[child], parent)
}

// closure walks the graph from the primary type, then from every struct the
// primary cannot reach. A struct unreachable from the single root always
// sits on or below a cycle, so the second pass surfaces it as a CycleError.
func (g *graph) closure(primary int, names []string) error {
	g.subtypes = make([]map[int]struct{}, len(names))
	for i := range g.subtypes {
		g.subtypes[i] = make(map[int]struct{})
	}
	g.onPath = make([]bool, len(names))
	g.done = make([]bool, len(names))

	if err := g.walk(primary, names); err != nil {
		return err
	}
	for i := range names {
		if !g.done[i] {
			if err := g.walk(i, names); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *graph) walk(i int, names []string) error {
	g.onPath[i] = true
	g.path = append(g.path, i)

	for _, c := range g.children[i] {
		if g.onPath[c] {
			return g.cycle(c, names)
		}
		if !g.done[c] {
			if err := g.walk(c, names); err != nil {
				return err
			}
		}
		for _, p := range g.path {
			g.subtypes[p][c] = struct{}{}
			for d := range g.subtypes[c] {
				g.subtypes[p][d] = struct{}{}
			}
		}
	}

	g.path = g.path[:len(g.path)-1]
	g.onPath[i] = false
	g.done[i] = true
	return nil
}

func (g *graph) cycle(c int, names []string) error {
	start := 0
	for k, p := range g.path {
		if p == c {
			start = k
			break
		}
	}
	path := make([]string, 0, len(g.path)-start+1)
	for _, p := range g.path[start:] {
		path = append(path, names[p])
	}
	return &CycleError{Path: append(path, names[c])}
}

func (e *Encoder) encodeType(i int) string {
	name := e.names[i]
	parts := make([]string, len(e.types[name]))
	for k, field := range e.types[name] {
		parts[k] = field.Type + " " + field.Name
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// resolve returns the descriptor index for a normalized type string,
// registering it and its element types on first use. It is only called
// during construction.
func (e *Encoder) resolve(typ string) (int, error) {
	if d, ok := e.descIndex[typ]; ok {
		return d, nil
	}

	var desc typeDesc
	if m := arrayPattern.FindStringSubmatch(typ); m != nil {
		elem, err := e.resolve(m[1])
		if err != nil {
			return 0, err
		}
		length := -1
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return 0, &InvalidTypeError{Type: typ, Reason: "invalid array length"}
			}
			length = n
		}
		desc = typeDesc{name: typ, kind: kindArray, elem: elem, length: length}
	} else if base, ok, err := parseBase(typ); err != nil {
		return 0, err
	} else if ok {
		desc = base
	} else if s, ok := e.structs[typ]; ok {
		desc = typeDesc{name: typ, kind: kindStruct, strct: s}
	} else {
		return 0, &UnknownTypeError{Type: typ}
	}

	e.descs = append(e.descs, desc)
	e.descIndex[typ] = len(e.descs) - 1
	return len(e.descs) - 1, nil
}

// PrimaryType returns the name of the unique struct no other struct references.
func (e *Encoder) PrimaryType() string {
	return e.names[e.primary]
}

// Types returns a copy of the normalized struct declarations.
func (e *Encoder) Types() Types {
	return e.types.Copy()
}

// EncodeType returns the encoded type string of the named struct: its own
// declaration followed by every struct it transitively references, sorted
// by name.
func (e *Encoder) EncodeType(name string) (string, error) {
	i, ok := e.structs[name]
	if !ok {
		return "", &UnknownTypeError{Type: name}
	}
	return e.encodedTypes[i], nil
}

// TypeHash returns keccak256 of the encoded type string of the named struct.
func (e *Encoder) TypeHash(name string) (common.Hash, error) {
	i, ok := e.structs[name]
	if !ok {
		return common.Hash{}, &UnknownTypeError{Type: name}
	}
	return e.typeHashes[i], nil
}
