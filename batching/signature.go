// signature.go
//
// Defines the Signature value identifying a batchable call shape: the set
// of input tensor names and the set of output tensor names. Requests are
// routed to a scheduler by Signature, so it must work as a map key with
// set equality on both name sets.

package batching

import (
	"fmt"
	"sort"
	"strings"
)

// nameSep joins sorted names into the canonical key. The unit separator is
// not a legal character in tensor names.
const nameSep = "\x1f"

// Signature identifies a batchable call shape. Two signatures built from
// the same input and output name sets compare equal regardless of the
// order (or duplication) of the names they were built from.
//
// The zero value is the empty signature.
type Signature struct {
	inputKey  string
	outputKey string
}

// NewSignature builds a Signature from input and output tensor names.
// Names deduplicate; order is irrelevant.
func NewSignature(inputNames, outputNames []string) Signature {
	return Signature{
		inputKey:  canonicalKey(inputNames),
		outputKey: canonicalKey(outputNames),
	}
}

// signatureFromRunArgs derives the Signature of one Run call from its
// input pairs and requested output names.
func signatureFromRunArgs(inputs []NamedTensor, outputNames []string) Signature {
	in := make([]string, 0, len(inputs))
	for _, entry := range inputs {
		in = append(in, entry.Name)
	}
	return NewSignature(in, outputNames)
}

// TensorInfo names one tensor in an exported model signature.
type TensorInfo struct {
	Name string
}

// SignatureDef is a model-signature descriptor: logical alias names mapped
// to the tensor each alias resolves to.
type SignatureDef struct {
	Inputs  map[string]TensorInfo
	Outputs map[string]TensorInfo
}

// SignatureFromSignatureDef builds the Signature covering one exported
// model signature.
func SignatureFromSignatureDef(def SignatureDef) Signature {
	return SignatureFromSignatureDefs([]SignatureDef{def})
}

// SignatureFromSignatureDefs builds the Signature covering the union of
// several exported model signatures, so one scheduler can serve calls that
// span them.
func SignatureFromSignatureDefs(defs []SignatureDef) Signature {
	var in, out []string
	for _, def := range defs {
		for _, info := range def.Inputs {
			in = append(in, info.Name)
		}
		for _, info := range def.Outputs {
			out = append(out, info.Name)
		}
	}
	return NewSignature(in, out)
}

// InputNames returns the input name set in the signature's frozen
// iteration order (sorted). The merger builds the engine call's input list
// in this order.
func (s Signature) InputNames() []string {
	return splitKey(s.inputKey)
}

// OutputNames returns the output name set in the signature's frozen
// iteration order (sorted).
func (s Signature) OutputNames() []string {
	return splitKey(s.outputKey)
}

func (s Signature) String() string {
	return fmt.Sprintf("{input_tensors: <%s>, output_tensors: <%s>}",
		strings.Join(s.InputNames(), ", "), strings.Join(s.OutputNames(), ", "))
}

func canonicalKey(names []string) string {
	seen := make(map[string]bool, len(names))
	uniq := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			uniq = append(uniq, n)
		}
	}
	sort.Strings(uniq)
	return strings.Join(uniq, nameSep)
}

func splitKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, nameSep)
}
