package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/auth"
	"painel/internal/dataset"
	"painel/internal/views"
)

func TestHashCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"hash", "segredo"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, auth.Hash("segredo")+"\n", out.String())
}

func TestHashCommandRequiresOneArg(t *testing.T) {
	rootCmd.SetArgs([]string{"hash"})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})
	assert.Error(t, rootCmd.Execute())
}

func TestWriteReport(t *testing.T) {
	extract := "numeroprocesso,numero,codparte,estado,varacidade,tipodocumento,datarecebimento,Egresso,Capital,pessoaemsituacaoderua\n" +
		"0001,P1,C1,SP,São Paulo,RG,2024-03-15,Sim,1,True\n" +
		"0002,P2,C2,SP,Campinas,CPF,2024-04-02,Não,0,False\n"
	table, notices, err := dataset.Parse("extract.csv", []byte(extract))
	require.NoError(t, err)

	dash := views.Render(views.State{Full: table, Notices: notices})

	var out bytes.Buffer
	require.NoError(t, writeReport(&out, "extract.csv", dash))
	report := out.String()

	for _, want := range []string{"Arquivo:", "extract.csv", "Visão geral", "Por tipo de documento", "Por município"} {
		assert.Contains(t, report, want)
	}
	assert.True(t, strings.Contains(report, "RG") || strings.Contains(report, "CPF"), report)
}
