// Package lua provides a completion provider whose candidates come from a
// Lua script.
//
// The script runs in a sandboxed gopher-lua state (base, table, string and
// math libraries only) and must define a global function:
//
//	function complete(prefix, trigger, buffer)
//	  -- prefix:  the part of the word before the caret
//	  -- trigger: { kind = "Invoke", char = "." }
//	  -- buffer:  { text = "...", caret = 12 }
//	  return {
//	    "plain",
//	    { label = "print", insert = "print()", detail = "builtin",
//	      kind = "function", filter = "print", sort = "0", priority = 0,
//	      commit = "(", category = "builtins" },
//	  }
//	end
//
// Strings become plain text items. Tables need at least a label. An
// optional second return value is an options table:
//
//	return items, { suggestion_mode = true, builder = "<new name>" }
package lua
