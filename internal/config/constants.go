package config

const SourceFileExt = ".cl"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".cl", ".cool"}

// Version of the autotype toolchain, printed by the version command.
const Version = "0.4.0"

// IsTestMode indicates if the program is running in test mode.
// Placeholder serials are normalized to T? when set.
var IsTestMode = false

// Built-in class names
const (
	ObjectTypeName = "Object"
	IOTypeName     = "IO"
	StringTypeName = "String"
	IntTypeName    = "Int"
	BoolTypeName   = "Bool"
	MainTypeName   = "Main"
)

// Reserved type names
const (
	SelfTypeName = "SELF_TYPE"
	AutoTypeName = "AUTO_TYPE"
)

// Reserved identifiers and entry point
const (
	SelfName       = "self"
	MainMethodName = "main"
)

// Built-in method names
const (
	AbortMethodName     = "abort"
	TypeNameMethodName  = "type_name"
	CopyMethodName      = "copy"
	OutStringMethodName = "out_string"
	OutIntMethodName    = "out_int"
	InStringMethodName  = "in_string"
	InIntMethodName     = "in_int"
	LengthMethodName    = "length"
	ConcatMethodName    = "concat"
	SubstrMethodName    = "substr"
)

// BasicClasses lists the classes installed before any user class, in
// installation order. Their order fixes the pre-order indices of the
// built-in part of the hierarchy.
var BasicClasses = []string{ObjectTypeName, IOTypeName, StringTypeName, IntTypeName, BoolTypeName}

// SealedClasses cannot be inherited from.
var SealedClasses = map[string]bool{
	StringTypeName: true,
	IntTypeName:    true,
	BoolTypeName:   true,
}
