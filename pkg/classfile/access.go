package classfile

import "strings"

// AccessFlags is the access_flags bitset of a class, field, method, inner
// class or method parameter. The meaning of a bit depends on where it
// appears, see FlagContext.
type AccessFlags uint16

// Access flags
const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccMandated     AccessFlags = 0x8000
)

// FlagContext selects which record kind an AccessFlags value belongs to.
type FlagContext int

const (
	ClassContext FlagContext = iota
	FieldContext
	MethodContext
	InnerClassContext
	ParameterContext
)

type flagName struct {
	flag AccessFlags
	name string
}

var flagNames = map[FlagContext][]flagName{
	ClassContext: {
		{AccPublic, "public"}, {AccFinal, "final"}, {AccSuper, "super"},
		{AccInterface, "interface"}, {AccAbstract, "abstract"}, {AccSynthetic, "synthetic"},
		{AccAnnotation, "annotation"}, {AccEnum, "enum"},
	},
	FieldContext: {
		{AccPublic, "public"}, {AccPrivate, "private"}, {AccProtected, "protected"},
		{AccStatic, "static"}, {AccFinal, "final"}, {AccVolatile, "volatile"},
		{AccTransient, "transient"}, {AccSynthetic, "synthetic"}, {AccEnum, "enum"},
	},
	MethodContext: {
		{AccPublic, "public"}, {AccPrivate, "private"}, {AccProtected, "protected"},
		{AccStatic, "static"}, {AccFinal, "final"}, {AccSynchronized, "synchronized"},
		{AccBridge, "bridge"}, {AccVarargs, "varargs"}, {AccNative, "native"},
		{AccAbstract, "abstract"}, {AccStrict, "strict"}, {AccSynthetic, "synthetic"},
	},
	InnerClassContext: {
		{AccPublic, "public"}, {AccPrivate, "private"}, {AccProtected, "protected"},
		{AccStatic, "static"}, {AccFinal, "final"}, {AccInterface, "interface"},
		{AccAbstract, "abstract"}, {AccSynthetic, "synthetic"}, {AccAnnotation, "annotation"},
		{AccEnum, "enum"},
	},
	ParameterContext: {
		{AccFinal, "final"}, {AccSynthetic, "synthetic"}, {AccMandated, "mandated"},
	},
}

// Has reports whether every bit of flag is set.
func (f AccessFlags) Has(flag AccessFlags) bool { return f&flag == flag }

func (f AccessFlags) IsPublic() bool    { return f.Has(AccPublic) }
func (f AccessFlags) IsStatic() bool    { return f.Has(AccStatic) }
func (f AccessFlags) IsInterface() bool { return f.Has(AccInterface) }
func (f AccessFlags) IsAbstract() bool  { return f.Has(AccAbstract) }
func (f AccessFlags) IsSynthetic() bool { return f.Has(AccSynthetic) }

// Names returns the keyword for every set bit that is meaningful in ctx,
// in declaration order.
func (f AccessFlags) Names(ctx FlagContext) []string {
	var out []string
	for _, fn := range flagNames[ctx] {
		if f.Has(fn.flag) {
			out = append(out, fn.name)
		}
	}
	return out
}

// Format joins Names with spaces, e.g. "public static final".
func (f AccessFlags) Format(ctx FlagContext) string {
	return strings.Join(f.Names(ctx), " ")
}
