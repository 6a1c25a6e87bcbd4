package notation

// VectorElement is a packed homogeneous buffer of one scalar sub type,
// stored in wire byte order.
type VectorElement struct {
	sub   SubType
	count int
	data  []byte
}

func (v *VectorElement) Type() DataType { return VectorType(v.sub) }
func (*VectorElement) isElement()       {}

// NewVectorElement packs items into a vector node.
func NewVectorElement[T ScalarValue](items []T) *VectorElement {
	var zero T
	sub := subTypeFor(any(zero))
	data := make([]byte, 0, len(items)*sub.Size())
	for _, item := range items {
		data = NewScalar(item).AppendBinary(data)
	}
	return &VectorElement{sub: sub, count: len(items), data: data}
}

// VectorFromBytes wraps count packed elements of sub. The buffer is owned
// by the returned node.
func VectorFromBytes(sub SubType, count int, data []byte) (*VectorElement, error) {
	if !sub.Valid() {
		return nil, newError(ErrUnexpectedType, VectorType(sub), "vector", "unknown sub type %d", uint8(sub))
	}
	if count < 0 || len(data) != count*sub.Size() {
		return nil, newError(ErrParameterMismatch, VectorType(sub), "vector",
			"%d elements of %s need %d bytes, got %d", count, sub, count*sub.Size(), len(data))
	}
	return &VectorElement{sub: sub, count: count, data: data}, nil
}

// Sub returns the element sub type.
func (v *VectorElement) Sub() SubType { return v.sub }

// Len returns the element count.
func (v *VectorElement) Len() int { return v.count }

// Bytes returns the packed buffer.
func (v *VectorElement) Bytes() []byte { return v.data }

// At decodes element i.
func (v *VectorElement) At(i int) (*ScalarElement, error) {
	if i < 0 || i >= v.count {
		return nil, indexError(v.Type(), i, v.count)
	}
	size := v.sub.Size()
	return DecodeScalar(v.sub, v.data[i*size:(i+1)*size])
}

// VectorValues unpacks a vector whose sub type matches T.
func VectorValues[T ScalarValue](v *VectorElement) ([]T, error) {
	var zero T
	if want := subTypeFor(any(zero)); want != v.sub {
		return nil, newError(ErrUnexpectedType, v.Type(), "vector",
			"expecting vector<%s>", want)
	}
	out := make([]T, v.count)
	for i := range out {
		s, err := v.At(i)
		if err != nil {
			return nil, err
		}
		out[i] = s.value.(T)
	}
	return out, nil
}
