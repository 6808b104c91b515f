package typesystem

import "github.com/funvibe/autotype/internal/config"

// InstallBasicClasses registers Object, IO, String, Int and Bool and links
// them under Object. User classes are registered afterwards.
func InstallBasicClasses(c *Context) TypeID {
	var object TypeID
	for _, name := range config.BasicClasses {
		id, err := c.CreateType(name)
		if err != nil {
			panic("basic class installed twice: " + name)
		}
		if name == config.ObjectTypeName {
			object = id
			continue
		}
		if err := c.SetParent(id, object); err != nil {
			panic(err)
		}
	}
	return object
}

// InstallBasicMethods defines the methods of the basic classes. It runs
// after Finalize so signatures can refer to every basic class.
func InstallBasicMethods(c *Context) {
	object, _ := c.Lookup(config.ObjectTypeName)
	io, _ := c.Lookup(config.IOTypeName)
	str, _ := c.Lookup(config.StringTypeName)
	integer, _ := c.Lookup(config.IntTypeName)

	strT := c.Con(str)
	intT := c.Con(integer)

	define := func(owner TypeID, name string, ret Type, params ...Param) {
		if _, err := c.DefineMethod(owner, name, params, ret); err != nil {
			panic(err)
		}
	}

	define(object, config.AbortMethodName, c.Con(object))
	define(object, config.TypeNameMethodName, strT)
	define(object, config.CopyMethodName, TSelf{})

	define(io, config.OutStringMethodName, TSelf{}, Param{Name: "x", Type: strT})
	define(io, config.OutIntMethodName, TSelf{}, Param{Name: "x", Type: intT})
	define(io, config.InStringMethodName, strT)
	define(io, config.InIntMethodName, intT)

	define(str, config.LengthMethodName, intT)
	define(str, config.ConcatMethodName, strT, Param{Name: "s", Type: strT})
	define(str, config.SubstrMethodName, strT, Param{Name: "i", Type: intT}, Param{Name: "l", Type: intT})
}

// IsBasic reports whether name is one of the installed basic classes.
func IsBasic(name string) bool {
	for _, b := range config.BasicClasses {
		if b == name {
			return true
		}
	}
	return false
}
