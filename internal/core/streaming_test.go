package core

import (
	"io"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestDecodeText(t *testing.T) {
	latin1, err := charmap.Windows1252.NewEncoder().String("Modelo;Área ISO\nHP 85A;5%\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "plain utf-8",
			input: []byte("Modelo,Cor\nHP,Preto\n"),
			want:  "Modelo,Cor\nHP,Preto\n",
		},
		{
			name:  "utf-8 with BOM",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("Unidade\nMatriz\n")...),
			want:  "Unidade\nMatriz\n",
		},
		{
			name:  "windows-1252",
			input: []byte(latin1),
			want:  "Modelo;Área ISO\nHP 85A;5%\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(DecodeText(tt.input))
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("DecodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}
