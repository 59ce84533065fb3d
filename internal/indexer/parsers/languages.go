package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_scala "github.com/tree-sitter/tree-sitter-scala/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
)

// languageSpec describes how to obtain a grammar and tag query for one
// of the fixed set of supported extensions.
type languageSpec struct {
	name     string
	jsxLike  bool
	language func() *sitter.Language
	query    string
}

// languageTable maps every extension with a bundled grammar to its spec.
// Extensions with no entry here have no grammar wired into this
// registry; the registry silently returns ok=false for them and the
// chunker skips the file.
var languageTable = map[string]languageSpec{
	".go": {
		name:     "go",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_go.Language()) },
		query:    goTagQuery,
	},
	".cs": {
		name:     "csharp",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_csharp.Language()) },
		query:    csharpTagQuery,
	},
	".zig": {
		name:     "zig",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_zig.Language()) },
		query:    zigTagQuery,
	},
	".py": {
		name:     "python",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_python.Language()) },
		query:    pythonTagQuery,
	},
	".rs": {
		name:     "rust",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_rust.Language()) },
		query:    rustTagQuery,
	},
	".ts": {
		name:     "typescript",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
		query:    tsTagQuery,
	},
	".tsx": {
		name:     "tsx",
		jsxLike:  true,
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()) },
		query:    tsxTagQuery,
	},
	".js": {
		name:     "javascript",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_javascript.Language()) },
		query:    jsTagQuery,
	},
	".jsx": {
		name:     "javascript",
		jsxLike:  true,
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_javascript.Language()) },
		query:    jsTagQuery,
	},
	".java": {
		name:     "java",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_java.Language()) },
		query:    javaTagQuery,
	},
	".c": {
		name:     "c",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_c.Language()) },
		query:    cTagQuery,
	},
	".h": {
		name:     "c",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_c.Language()) },
		query:    cTagQuery,
	},
	".cpp": {
		name:     "cpp",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_cpp.Language()) },
		query:    cppTagQuery,
	},
	".hpp": {
		name:     "cpp",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_cpp.Language()) },
		query:    cppTagQuery,
	},
	".rb": {
		name:     "ruby",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_ruby.Language()) },
		query:    rubyTagQuery,
	},
	".php": {
		name:     "php",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_php.LanguagePHP()) },
		query:    phpTagQuery,
	},
	".scala": {
		name:     "scala",
		language: func() *sitter.Language { return sitter.NewLanguage(tree_sitter_scala.Language()) },
		query:    scalaTagQuery,
	},
}

const goTagQuery = `
(function_declaration name: (identifier) @name.definition.function) @definition.function
(method_declaration name: (field_identifier) @name.definition.method) @definition.method
(type_spec name: (type_identifier) @name.definition.type) @definition.type
`

const pythonTagQuery = `
(function_definition name: (identifier) @name.definition.function) @definition.function
(class_definition name: (identifier) @name.definition.class) @definition.class
`

const rustTagQuery = `
(function_item name: (identifier) @name.definition.function) @definition.function
(struct_item name: (type_identifier) @name.definition.struct) @definition.struct
(enum_item name: (type_identifier) @name.definition.enum) @definition.enum
(trait_item name: (type_identifier) @name.definition.trait) @definition.trait
(impl_item type: (type_identifier) @name.definition.impl) @definition.impl
`

const tsTagQuery = `
(function_declaration name: (identifier) @name.definition.function) @definition.function
(method_definition name: (property_identifier) @name.definition.method) @definition.method
(class_declaration name: (type_identifier) @name.definition.class) @definition.class
(interface_declaration name: (type_identifier) @name.definition.interface) @definition.interface
`

const tsxTagQuery = `
(function_declaration name: (identifier) @name.definition.function) @definition.function
(method_definition name: (property_identifier) @name.definition.method) @definition.method
(class_declaration name: (type_identifier) @name.definition.class) @definition.class
(variable_declarator name: (identifier) @name.definition.component) @definition.component
`

const jsTagQuery = `
(function_declaration name: (identifier) @name.definition.function) @definition.function
(method_definition name: (property_identifier) @name.definition.method) @definition.method
(class_declaration name: (identifier) @name.definition.class) @definition.class
`

const javaTagQuery = `
(class_declaration name: (identifier) @name.definition.class) @definition.class
(interface_declaration name: (identifier) @name.definition.interface) @definition.interface
(method_declaration name: (identifier) @name.definition.method) @definition.method
`

const cTagQuery = `
(function_definition declarator: (function_declarator declarator: (identifier) @name.definition.function)) @definition.function
(struct_specifier name: (type_identifier) @name.definition.struct) @definition.struct
`

const cppTagQuery = `
(function_definition declarator: (function_declarator declarator: (identifier) @name.definition.function)) @definition.function
(class_specifier name: (type_identifier) @name.definition.class) @definition.class
(struct_specifier name: (type_identifier) @name.definition.struct) @definition.struct
`

const rubyTagQuery = `
(method name: (identifier) @name.definition.method) @definition.method
(class name: (constant) @name.definition.class) @definition.class
(module name: (constant) @name.definition.module) @definition.module
`

const phpTagQuery = `
(function_definition name: (name) @name.definition.function) @definition.function
(method_declaration name: (name) @name.definition.method) @definition.method
(class_declaration name: (name) @name.definition.class) @definition.class
`

const csharpTagQuery = `
(class_declaration name: (identifier) @name.definition.class) @definition.class
(interface_declaration name: (identifier) @name.definition.interface) @definition.interface
(method_declaration name: (identifier) @name.definition.method) @definition.method
`

const zigTagQuery = `
(function_declaration name: (identifier) @name.definition.function) @definition.function
`

const scalaTagQuery = `
(function_definition name: (identifier) @name.definition.function) @definition.function
(class_definition name: (identifier) @name.definition.class) @definition.class
(object_definition name: (identifier) @name.definition.object) @definition.object
(trait_definition name: (identifier) @name.definition.trait) @definition.trait
`
