package projection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raywall/dynexpr/schema"
)

// ErrBuilt é retornado quando se tenta declarar membros depois de Build.
var ErrBuilt = errors.New("projection: builder already built")

type directionState struct {
	arena *arena
	types map[*schema.Type]*Projection
}

func newDirectionState() *directionState {
	return &directionState{arena: &arena{}, types: make(map[*schema.Type]*Projection)}
}

func (ds *directionState) projection(t *schema.Type) *Projection {
	p, ok := ds.types[t]
	if !ok {
		p = &Projection{
			owner: t,
			names: NameTable{t: &table{entries: make(map[string]NameRef)}},
			root:  ds.arena.alloc(),
			arena: ds.arena,
		}
		ds.types[t] = p
	}
	return p
}

// Builder acumula declarações até Build.
type Builder struct {
	dirs  [2]*directionState
	built bool
}

// NewBuilder cria um builder vazio.
func NewBuilder() *Builder {
	return &Builder{dirs: [2]*directionState{newDirectionState(), newDirectionState()}}
}

// Declare liga o membro lógico member de owner ao caminho físico path.
//
// Declarar o mesmo membro de novo, na mesma direção, sobrescreve a entrada.
// Quando memberType é um Record, a entrada e o último segmento do caminho
// passam a apontar para a projeção desse tipo, criada sob demanda para que
// declarações posteriores (inclusive autorreferências) apareçam.
func (b *Builder) Declare(owner *schema.Type, dir Direction, member, path string, memberType *schema.Type) error {
	if b.built {
		return ErrBuilt
	}
	if owner == nil || memberType == nil {
		return fmt.Errorf("projection: %s: owner and member types are required", member)
	}
	if dir != Read && dir != Write {
		return fmt.Errorf("projection: unknown direction %d", int(dir))
	}
	if member == "" {
		return fmt.Errorf("projection: %s: empty member name", owner.Name())
	}
	segments := strings.Split(path, ".")
	for _, s := range segments {
		if s == "" {
			return fmt.Errorf("projection: %s.%s: invalid attribute path %q", owner.Name(), member, path)
		}
	}

	ds := b.dirs[dir]
	p := ds.projection(owner)

	var nested *Projection
	if memberType.Kind() == schema.KindRecord {
		nested = ds.projection(memberType)
	}

	ref := NameRef{Path: path, Type: memberType}
	if nested != nil {
		ref.Nested = nested.names
	}
	if _, exists := p.names.t.entries[member]; !exists {
		p.names.t.order = append(p.names.t.order, member)
	}
	p.names.t.entries[member] = ref

	lv := p.root
	for i, seg := range segments {
		cur := ds.arena.levels[lv]
		pos, ok := cur.index[seg]
		if !ok {
			cur.segs = append(cur.segs, Segment{Name: seg, Nested: ds.arena.alloc()})
			pos = len(cur.segs) - 1
			cur.index[seg] = pos
		}
		if i < len(segments)-1 {
			lv = cur.segs[pos].Nested
			continue
		}
		if nested != nil {
			cur.segs[pos].Nested = nested.root
		}
	}
	return nil
}

// Build congela o builder e retorna o índice.
func (b *Builder) Build() *Index {
	b.built = true
	return &Index{dirs: b.dirs}
}

// Index é o conjunto imutável de projeções.
type Index struct {
	dirs [2]*directionState
}

// Projection retorna a projeção de t na direção dir, ou nil.
func (ix *Index) Projection(t *schema.Type, dir Direction) *Projection {
	if ix == nil || (dir != Read && dir != Write) {
		return nil
	}
	return ix.dirs[dir].types[t]
}

// Read é um atalho para Projection(t, Read).
func (ix *Index) Read(t *schema.Type) *Projection { return ix.Projection(t, Read) }

// Write é um atalho para Projection(t, Write).
func (ix *Index) Write(t *schema.Type) *Projection { return ix.Projection(t, Write) }
