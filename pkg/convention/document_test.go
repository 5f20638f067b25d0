package convention

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiolab/sofaconv/pkg/errors"
)

const testHeader = "Name\tDefault\tFlags\tDimensions\tType\tComment"

func compileLines(t *testing.T, file string, lines ...string) *Record {
	t.Helper()
	record, err := Compile(file, []byte(strings.Join(lines, "\n")+"\n"))
	require.NoError(t, err)
	return record
}

func TestCompileVersionEntry(t *testing.T) {
	record := compileLines(t, "GeneralFIR.csv",
		testHeader,
		"GLOBAL:Version\t1\t\t\t\t",
	)

	require.Equal(t, 1, record.Len())
	assert.Equal(t, "GeneralFIR", record.Name())

	entry, ok := record.Get("GLOBAL:Version")
	require.True(t, ok)
	assert.Equal(t, "1.0", field(t, entry, "default"))
	assert.Nil(t, field(t, entry, "flags"))
	assert.Nil(t, field(t, entry, "dimensions"))
	assert.Nil(t, field(t, entry, "type"))
	assert.Nil(t, field(t, entry, "comment"))
}

func TestCompileNestedDefault(t *testing.T) {
	record := compileLines(t, "SimpleFreeFieldSOS.csv",
		testHeader,
		"Data.SOS\t[0 0 0 1 0 0; 0 0 0 1 0 0]\t\tMRN\tdouble",
	)

	entry, ok := record.Get("Data.SOS")
	require.True(t, ok)

	row := []interface{}{int64(0), int64(0), int64(0), int64(1), int64(0), int64(0)}
	assert.Equal(t, []interface{}{row, row}, field(t, entry, "default"))
	assert.Nil(t, field(t, entry, "flags"))
	assert.Equal(t, "MRN", field(t, entry, "dimensions"))
	assert.Equal(t, "double", field(t, entry, "type"))
	// the omitted comment column is tolerated and reported as empty string
	assert.Equal(t, "", field(t, entry, "comment"))
}

func TestCompileOrdering(t *testing.T) {
	record := compileLines(t, "GeneralTF.csv",
		testHeader,
		"Data.Real\t0\tm\tmRn\tdouble\t",
		"ListenerPosition\t[0 0 0]\trm\tIC, MC\tdouble\t",
		"GLOBAL:Conventions\tSOFA\trm\t\tstring\t",
		"Data.Imag\t0\tm\tMRN\tdouble\t",
		"GLOBAL:DataType\tTF\trm\t\tstring\t",
		"ReceiverPosition\t[0 0 0]\trm\trCI, rCM\tdouble\t",
	)

	assert.Equal(t, []string{
		"GLOBAL:Conventions",
		"GLOBAL:DataType",
		"ListenerPosition",
		"ReceiverPosition",
		"Data.Real",
		"Data.Imag",
	}, record.Keys())
}

func TestCompileLastWriteWins(t *testing.T) {
	record := compileLines(t, "GeneralFIR.csv",
		testHeader,
		"GLOBAL:DataType\tFIR\trm\t\tstring\t",
		"GLOBAL:DataType\tTF\trm\t\tstring\t",
	)

	require.Equal(t, 1, record.Len())
	entry, _ := record.Get("GLOBAL:DataType")
	assert.Equal(t, "TF", field(t, entry, "default"))
}

func TestCompileFailureNamesFileAndLine(t *testing.T) {
	lines := []string{
		testHeader,
		"GLOBAL:Conventions\tSOFA\trm\t\tstring\t",
		"Data.Delay\t[0, zero]\t\tIR, MR\tdouble\t",
	}
	_, err := Compile("GeneralFIR.csv", []byte(strings.Join(lines, "\n")))
	require.Error(t, err)

	assert.True(t, errors.IsType(err, errors.ErrorTypeDocument), "got %v", err)
	assert.Contains(t, err.Error(), "GeneralFIR.csv")
	assert.Contains(t, err.Error(), "line 2")

	var structured *errors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, "GeneralFIR.csv", structured.Details["file"])
	assert.Equal(t, 2, structured.Details["line"])
}

func TestCompileNoPartialRecordOnFailure(t *testing.T) {
	lines := []string{
		testHeader,
		"GLOBAL:Conventions\tSOFA\trm\t\tstring\t",
		"broken line without cells",
	}
	record, err := Compile("Broken.csv", []byte(strings.Join(lines, "\n")))
	require.Error(t, err)
	assert.Nil(t, record)
}

func TestCompileWindows1252(t *testing.T) {
	// 0xB0 is the degree sign in Windows-1252 and invalid as bare UTF-8
	data := []byte(testHeader + "\n")
	data = append(data, []byte("EmitterPosition\t[0 0 0]\trm\teCI, eCM\tdouble\tangle in ")...)
	data = append(data, 0xB0)
	data = append(data, '\n')

	record, err := Compile("General.csv", data)
	require.NoError(t, err)

	entry, ok := record.Get("EmitterPosition")
	require.True(t, ok)
	assert.Equal(t, "angle in °", field(t, entry, "comment"))
}

func TestCompileCRLF(t *testing.T) {
	data := []byte(testHeader + "\r\nGLOBAL:DataType\tFIR\trm\t\tstring\t\r\n")
	record, err := Compile("General.csv", data)
	require.NoError(t, err)

	entry, ok := record.Get("GLOBAL:DataType")
	require.True(t, ok)
	assert.Equal(t, "FIR", field(t, entry, "default"))
}

func TestCompileEmptyDocument(t *testing.T) {
	record, err := Compile("Empty.csv", []byte(testHeader+"\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, record.Len())
}
