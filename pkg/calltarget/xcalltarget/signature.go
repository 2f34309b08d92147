package xcalltarget

import (
	"reflect"
	"strings"
)

// Kind 处理器种类
type Kind uint8

const (
	// KindBegin 入口处理器，钩子为 OnMethodBegin
	KindBegin Kind = iota + 1
	// KindEnd 无返回值方法的出口处理器，钩子为 OnMethodEnd
	KindEnd
	// KindEndReturn 有返回值方法的出口处理器，钩子为 OnMethodEnd
	KindEndReturn
)

// String 返回种类名称，同时用作指标属性值
func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindEndReturn:
		return "end_return"
	default:
		return "unknown"
	}
}

// HookName 返回该种类对应的集成钩子方法名
func (k Kind) HookName() string {
	if k == KindBegin {
		return "OnMethodBegin"
	}
	return "OnMethodEnd"
}

// Signature 处理器签名：(集成, 目标类型, 参数类型序列[, 返回类型])。
//
// 签名是绑定缓存的键。两个签名相等当且仅当所有类型逐一同一。
type Signature struct {
	Kind        Kind
	Integration reflect.Type
	Target      reflect.Type
	Args        []reflect.Type
	Return      reflect.Type
}

func newSignature(kind Kind, integration, target, ret reflect.Type, args ...reflect.Type) Signature {
	return Signature{
		Kind:        kind,
		Integration: integration,
		Target:      target,
		Args:        args,
		Return:      ret,
	}
}

// Arity 返回参数个数
func (s Signature) Arity() int { return len(s.Args) }

// Equal 报告两个签名是否同一
func (s Signature) Equal(o Signature) bool {
	if s.Kind != o.Kind || s.Integration != o.Integration || s.Target != o.Target ||
		s.Return != o.Return || len(s.Args) != len(o.Args) {
		return false
	}
	for i := range s.Args {
		if s.Args[i] != o.Args[i] {
			return false
		}
	}
	return true
}

// IntegrationName 返回集成的完整名称（包路径.类型名），用于禁用列表匹配。
func (s Signature) IntegrationName() string {
	t := s.Integration
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// String 返回可读形式，例如
//
//	begin xgin.Integration: *gin.Engine(*gin.Context)
//	end_return xsql.Integration: *sql.DB(string, error, xcalltarget.State) -> int64
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	b.WriteByte(' ')
	b.WriteString(typeString(s.Integration))
	b.WriteString(": ")
	b.WriteString(typeString(s.Target))
	b.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typeString(a))
	}
	b.WriteByte(')')
	if s.Return != nil {
		b.WriteString(" -> ")
		b.WriteString(s.Return.String())
	}
	return b.String()
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

var (
	errorType = reflect.TypeFor[error]()
	stateType = reflect.TypeFor[State]()
)
