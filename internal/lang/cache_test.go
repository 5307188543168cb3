package lang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Program_MarshalUnmarshalBinary_Roundtrip(t *testing.T) {
	require := require.New(t)

	src := `
		fn double(x) { x * 2 }
		let sum = 0
		for let i = 1; i <= 3; i += 1 {
			sum += double(i)
		}
		if sum > 10 { sum } else { 0 }
	`

	prog, err := Parse(src)
	require.NoError(err)

	data, err := prog.MarshalBinary()
	require.NoError(err)
	require.NotEmpty(data)

	var restored Program
	require.NoError(restored.UnmarshalBinary(data))

	rt1 := NewRuntime()
	rt1.RegisterDefaults()
	want := rt1.Run(prog)

	rt2 := NewRuntime()
	rt2.RegisterDefaults()
	got := rt2.Run(restored)

	require.Equal(want, got)
}

func Test_Program_UnmarshalBinary_RejectsTruncatedData(t *testing.T) {
	require := require.New(t)

	prog, err := Parse(`1 + 1`)
	require.NoError(err)

	data, err := prog.MarshalBinary()
	require.NoError(err)
	require.True(len(data) > 1)

	var restored Program
	err = restored.UnmarshalBinary(data[:len(data)-1])
	require.Error(err)
}
