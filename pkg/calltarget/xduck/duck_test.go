package xduck

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// 测试类型
// =============================================================================

type namer interface {
	Name() string
}

type sizer interface {
	Size() int
}

type valueNamer struct{ name string }

func (v valueNamer) Name() string { return v.name }

type ptrNamer struct{ name string }

func (p *ptrNamer) Name() string { return p.name }

// legacyConn 没有 Name 方法，只能通过注册的适配函数获得视图
type legacyConn struct{ addr string }

func (c *legacyConn) Addr() string { return c.addr }

type connNamer struct{ c *legacyConn }

func (n connNamer) Name() string { return "conn:" + n.c.addr }

type addrer interface {
	Addr() string
}

// wrongSig 方法名相同但签名不同
type wrongSig struct{}

func (wrongSig) Name() int { return 0 }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(WithCacheSize(16))
	require.NoError(t, err)
	return r
}

// =============================================================================
// New
// =============================================================================

func TestNew_InvalidCacheSize(t *testing.T) {
	_, err := New(WithCacheSize(0))
	assert.ErrorIs(t, err, ErrInvalidCacheSize)

	_, err = New(WithCacheSize(-1), nil)
	assert.ErrorIs(t, err, ErrInvalidCacheSize)
}

func TestDefault_Singleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

// =============================================================================
// 适配策略
// =============================================================================

func TestAdapt_Identity(t *testing.T) {
	r := newTestRegistry(t)
	in := valueNamer{name: "a"}

	got, err := r.Adapt(in, reflect.TypeFor[namer]())
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestAdapt_AddressableCopy(t *testing.T) {
	r := newTestRegistry(t)

	got, err := r.Adapt(ptrNamer{name: "b"}, reflect.TypeFor[namer]())
	require.NoError(t, err)
	n, ok := got.(namer)
	require.True(t, ok)
	assert.Equal(t, "b", n.Name())
	assert.IsType(t, &ptrNamer{}, got)
}

func TestAdapt_ExactFactory(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, Register(r, func(c *legacyConn) namer { return connNamer{c: c} }))

	got, err := r.Adapt(&legacyConn{addr: "10.0.0.1"}, reflect.TypeFor[namer]())
	require.NoError(t, err)
	assert.Equal(t, "conn:10.0.0.1", got.(namer).Name())
}

func TestAdapt_InterfaceFactory(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, Register(r, func(a addrer) namer { return valueNamer{name: "iface:" + a.Addr()} }))

	got, err := r.Adapt(&legacyConn{addr: "h"}, reflect.TypeFor[namer]())
	require.NoError(t, err)
	assert.Equal(t, "iface:h", got.(namer).Name())
}

func TestAdapt_InterfaceFactoryLastWins(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, Register(r, func(addrer) namer { return valueNamer{name: "first"} }))
	require.NoError(t, Register(r, func(addrer) namer { return valueNamer{name: "second"} }))

	got, err := As[namer](r, &legacyConn{})
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name())
}

func TestAdapt_NotAdaptable(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Adapt(wrongSig{}, reflect.TypeFor[namer]())
	require.ErrorIs(t, err, ErrNotAdaptable)

	var ae *AdaptError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, []string{"Name"}, ae.Missing)
	assert.Contains(t, ae.Error(), "missing: Name")
}

func TestAdapt_InvalidView(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Adapt(valueNamer{}, reflect.TypeFor[valueNamer]())
	assert.ErrorIs(t, err, ErrViewNotInterface)

	_, err = r.Adapt(valueNamer{}, nil)
	assert.ErrorIs(t, err, ErrViewNotInterface)
}

func TestAdapt_NilInstance(t *testing.T) {
	r := newTestRegistry(t)

	got, err := r.Adapt(nil, reflect.TypeFor[namer]())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestAdapt_FactoryPanic(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, Register(r, func(*legacyConn) namer { panic("broken factory") }))

	var got any
	var err error
	assert.NotPanics(t, func() {
		got, err = r.Adapt(&legacyConn{}, reflect.TypeFor[namer]())
	})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotAdaptable)
	assert.Contains(t, err.Error(), "broken factory")
}

// =============================================================================
// Register / As / CanAdapt
// =============================================================================

func TestRegister_Validation(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, Register[*legacyConn, namer](r, nil), ErrNilFactory)
	assert.ErrorIs(t, Register(r, func(c *legacyConn) valueNamer { return valueNamer{} }), ErrViewNotInterface)
}

func TestRegister_PurgesCache(t *testing.T) {
	r := newTestRegistry(t)
	view := reflect.TypeFor[namer]()

	assert.False(t, r.CanAdapt(reflect.TypeFor[*legacyConn](), view))
	assert.Equal(t, 1, r.CacheLen())

	require.NoError(t, Register(r, func(c *legacyConn) namer { return connNamer{c: c} }))
	assert.Equal(t, 0, r.CacheLen())
	assert.True(t, r.CanAdapt(reflect.TypeFor[*legacyConn](), view))
}

func TestAs(t *testing.T) {
	r := newTestRegistry(t)

	n, err := As[namer](r, valueNamer{name: "direct"})
	require.NoError(t, err)
	assert.Equal(t, "direct", n.Name())

	_, err = As[namer](r, 42)
	assert.ErrorIs(t, err, ErrNotAdaptable)

	_, err = As[valueNamer](r, valueNamer{})
	assert.ErrorIs(t, err, ErrViewNotInterface)

	n, err = As[namer](r, nil)
	assert.NoError(t, err)
	assert.Nil(t, n)
}

func TestCanAdapt(t *testing.T) {
	r := newTestRegistry(t)
	view := reflect.TypeFor[namer]()

	tests := []struct {
		name string
		from reflect.Type
		view reflect.Type
		want bool
	}{
		{"implements", reflect.TypeFor[valueNamer](), view, true},
		{"pointer_receiver", reflect.TypeFor[ptrNamer](), view, true},
		{"missing", reflect.TypeFor[int](), view, false},
		{"interface_decided_at_runtime", reflect.TypeFor[sizer](), view, true},
		{"nil_from", nil, view, false},
		{"non_interface_view", reflect.TypeFor[int](), reflect.TypeFor[int](), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.CanAdapt(tt.from, tt.view))
		})
	}
}

func TestAdapt_Concurrent(t *testing.T) {
	r := newTestRegistry(t)
	view := reflect.TypeFor[namer]()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				_ = Register(r, func(c *legacyConn) namer { return connNamer{c: c} })
			}
			for range 100 {
				_, _ = r.Adapt(valueNamer{name: "x"}, view)
				_, _ = r.Adapt(&legacyConn{addr: "y"}, view)
			}
		}(i)
	}
	wg.Wait()

	got, err := r.Adapt(&legacyConn{addr: "z"}, view)
	require.NoError(t, err)
	assert.Equal(t, "conn:z", got.(namer).Name())
}
