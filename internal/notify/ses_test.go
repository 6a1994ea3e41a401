package notify

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sesv2.SendEmailOutput{}, nil
}

func TestSESSenderFormatsFromAddress(t *testing.T) {
	ses := &fakeSES{}
	sender := NewSESSender(ses, "avisos@clinica.example", "Clínica Dental")

	err := sender.Send(context.Background(), EmailMessage{
		To:      []string{"staff@clinica.example"},
		Subject: "Respuesta de presupuesto",
		Body:    "El paciente aprobó el presupuesto.",
	})
	require.NoError(t, err)
	require.Len(t, ses.inputs, 1)

	in := ses.inputs[0]
	assert.Equal(t, "Clínica Dental <avisos@clinica.example>", *in.FromEmailAddress)
	assert.Equal(t, []string{"staff@clinica.example"}, in.Destination.ToAddresses)
	assert.Equal(t, "Respuesta de presupuesto", *in.Content.Simple.Subject.Data)
}

func TestSESSenderRequiresRecipients(t *testing.T) {
	sender := NewSESSender(&fakeSES{}, "avisos@clinica.example", "")
	err := sender.Send(context.Background(), EmailMessage{Subject: "x"})
	assert.Error(t, err)
}
