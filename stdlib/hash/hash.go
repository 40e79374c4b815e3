// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hash implements functions computing message digests.
package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"go/ast"
	gohash "hash"
	"slices"

	"github.com/gx-org/rex/base/stringseq"
	"github.com/gx-org/rex/build/fmterr"
	"github.com/gx-org/rex/build/function"
	"github.com/gx-org/rex/build/ir"
	"github.com/gx-org/rex/cgx/abi"
	"github.com/gx-org/rex/value"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Functions returns the hash functions.
func Functions() []function.Function {
	return []function.Function{md5Func, sha1Func, sha2Func, sha3Func}
}

// digest returns the hexadecimal digest of a value.
func digest(newHash func() gohash.Hash, v value.Value) (value.Value, error) {
	b, err := value.TryBytes(v)
	if err != nil {
		return nil, err
	}
	h := newHash()
	h.Write(b)
	return value.Bytes(hex.EncodeToString(h.Sum(nil))), nil
}

// Variant of a hash function.
type Variant struct {
	Name string
	New  func() gohash.Hash
}

// digestNode computes the digest of a value.
type digestNode struct {
	name    string
	value   ir.Expr
	variant *Variant
}

var _ ir.Expr = (*digestNode)(nil)

func (n *digestNode) Resolve(ctx *ir.Context) (value.Value, error) {
	v, err := n.value.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return digest(n.variant.New, v)
}

func (n *digestNode) TypeDef(*ir.Env) ir.TypeDef {
	return ir.TypeOf(value.KindBytes)
}

func (n *digestNode) Source() ast.Node {
	return nil
}

func (n *digestNode) String() string {
	return n.name + "(" + n.value.String() + ")"
}

var valueParam = function.Parameter{Keyword: "value", Kind: value.KindBytes, Required: true}

// fixedHash is a hash function without variants.
type fixedHash struct {
	function.Base
	variant *Variant
}

func (f *fixedHash) Compile(ctx *function.CompileContext, args *function.ArgumentList) (ir.Expr, error) {
	return &digestNode{name: f.Name, value: args.Required("value"), variant: f.variant}, nil
}

func md5Entry(f *abi.Frame) {
	f.Return(digest(md5.New, f.Take(0)))
}

var md5Func = &fixedHash{
	Base: function.Base{
		Name:   "md5",
		Params: []function.Parameter{valueParam},
		Samples: []function.Example{
			{
				Title:  "md5",
				Source: `md5("foo")`,
				Result: `"acbd18db4cc2f85cedef654fccc4a4d8"`,
			},
			{
				Title:  "not bytes",
				Source: `md5(42)`,
				Error:  `error[E110]: invalid argument type: "value" of md5 expects bytes, got integer`,
			},
		},
		Native: abi.Symbol{Name: "rex_fn_md5", Entry: md5Entry, Version: abi.Version},
	},
	variant: &Variant{Name: "MD5", New: md5.New},
}

func sha1Entry(f *abi.Frame) {
	f.Return(digest(sha1.New, f.Take(0)))
}

var sha1Func = &fixedHash{
	Base: function.Base{
		Name:   "sha1",
		Params: []function.Parameter{valueParam},
		Samples: []function.Example{
			{
				Title:  "sha1",
				Source: `sha1("foo")`,
				Result: `"0beec7b5ea3f0fdbc95d0dd47f3c5bc275da8a33"`,
			},
		},
		Native: abi.Symbol{Name: "rex_fn_sha1", Entry: sha1Entry, Version: abi.Version},
	},
	variant: &Variant{Name: "SHA-1", New: sha1.New},
}

// variantHash is a hash function with a variant chosen at compile time.
type variantHash struct {
	function.Base
	variants []*Variant
	def      string
}

func (f *variantHash) variantNames() []string {
	names := make([]string, len(f.variants))
	for i, v := range f.variants {
		names[i] = v.Name
	}
	return names
}

func (f *variantHash) lookup(v value.Value) (*Variant, error) {
	name, err := value.TryBytes(v)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(f.variants, func(v *Variant) bool { return v.Name == string(name) })
	if i < 0 {
		return nil, errors.Errorf("invalid variant %q: must be one of %s", name, stringseq.Join(stringseq.Quoted(f.variantNames()), ", "))
	}
	return f.variants[i], nil
}

func (f *variantHash) Compile(ctx *function.CompileContext, args *function.ArgumentList) (ir.Expr, error) {
	variant, err := function.CompileLiteral(args, "variant", value.Bytes(f.def), fmterr.CodeInvalidVariant, f.lookup)
	if err != nil {
		return nil, err
	}
	return &digestNode{name: f.Name, value: args.Required("value"), variant: variant}, nil
}

func variantEntry(f *abi.Frame, owner string) {
	v := f.Take(0)
	variant := abi.Literal[*Variant](f, 1, owner)
	f.Return(digest(variant.New, v))
}

func sha2Entry(f *abi.Frame) {
	variantEntry(f, "sha2")
}

func sha3Entry(f *abi.Frame) {
	variantEntry(f, "sha3")
}

var sha2Func = newVariantHash(
	function.Base{
		Name: "sha2",
		Params: []function.Parameter{
			valueParam,
			{Keyword: "variant", Kind: value.KindBytes},
		},
		Samples: []function.Example{
			{
				Title:  "sha2",
				Source: `sha2("foo", variant: "SHA-256")`,
				Result: `"2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae"`,
			},
			{
				Title:  "invalid variant",
				Source: `sha2("foo", variant: "SHA-1")`,
				Error:  `error[E112]: invalid variant "SHA-1": must be one of "SHA-224", "SHA-256", "SHA-384", "SHA-512", "SHA-512/224", "SHA-512/256"`,
			},
		},
	},
	abi.Symbol{Name: "rex_fn_sha2", Entry: sha2Entry, Version: abi.Version},
	"SHA-512/256",
	[]*Variant{
		{Name: "SHA-224", New: sha256.New224},
		{Name: "SHA-256", New: sha256.New},
		{Name: "SHA-384", New: sha512.New384},
		{Name: "SHA-512", New: sha512.New},
		{Name: "SHA-512/224", New: sha512.New512_224},
		{Name: "SHA-512/256", New: sha512.New512_256},
	},
)

var sha3Func = newVariantHash(
	function.Base{
		Name: "sha3",
		Params: []function.Parameter{
			valueParam,
			{Keyword: "variant", Kind: value.KindBytes},
		},
		Samples: []function.Example{
			{
				Title:  "sha3",
				Source: `sha3("", variant: "SHA3-256")`,
				Result: `"a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"`,
			},
			{
				Title:  "variant is a literal",
				Source: "v = \"SHA3-256\"\nsha3(\"\", variant: v)",
				Error:  "error[E111]: argument must be a literal",
			},
		},
	},
	abi.Symbol{Name: "rex_fn_sha3", Entry: sha3Entry, Version: abi.Version},
	"SHA3-512",
	[]*Variant{
		{Name: "SHA3-224", New: sha3.New224},
		{Name: "SHA3-256", New: sha3.New256},
		{Name: "SHA3-384", New: sha3.New384},
		{Name: "SHA3-512", New: sha3.New512},
	},
)

func newVariantHash(base function.Base, sym abi.Symbol, def string, variants []*Variant) *variantHash {
	base.Native = sym
	return &variantHash{Base: base, variants: variants, def: def}
}
