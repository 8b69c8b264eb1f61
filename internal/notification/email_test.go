package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-booking-backend/config"
)

func emailConfig(endpoint string) config.EmailConfig {
	return config.EmailConfig{
		Enabled:          true,
		Endpoint:         endpoint,
		ServiceID:        "service_x",
		PublicKey:        "pub",
		PrivateKey:       "priv",
		CustomerTemplate: "tpl_customer",
		OwnerTemplate:    "tpl_owner",
		OwnerEmail:       "dona@example.com",
	}
}

func TestEmailJSChannel_Send(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	note := "primeira vez"
	r := testReservation()
	r.Note = &note

	t.Run("customer", func(t *testing.T) {
		ch := NewEmailJSChannel(emailConfig(srv.URL), RecipientCustomer, srv.Client())
		assert.Equal(t, "email:customer", ch.Name())
		require.NoError(t, ch.Send(context.Background(), r))

		assert.Equal(t, "service_x", got.ServiceID)
		assert.Equal(t, "tpl_customer", got.TemplateID)
		assert.Equal(t, "pub", got.UserID)
		assert.Equal(t, "priv", got.AccessToken)
		assert.Equal(t, "Ana", got.TemplateParams["nome"])
		assert.Equal(t, "10/06/2025", got.TemplateParams["data"])
		assert.Equal(t, "09:00", got.TemplateParams["hora"])
		assert.Equal(t, "primeira vez", got.TemplateParams["mensagem"])
		assert.Equal(t, "ana@example.com", got.TemplateParams["to_email"])
	})

	t.Run("owner", func(t *testing.T) {
		ch := NewEmailJSChannel(emailConfig(srv.URL), RecipientOwner, srv.Client())
		assert.Equal(t, "email:owner", ch.Name())
		require.NoError(t, ch.Send(context.Background(), r))

		assert.Equal(t, "tpl_owner", got.TemplateID)
		assert.Equal(t, "dona@example.com", got.TemplateParams["to_email"])
		assert.Equal(t, "Ana reservou 10/06/2025 às 09:00", got.TemplateParams["resumo"])
	})
}

func TestEmailJSChannel_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("The template ID is invalid"))
	}))
	defer srv.Close()

	ch := NewEmailJSChannel(emailConfig(srv.URL), RecipientCustomer, srv.Client())
	err := ch.Send(context.Background(), testReservation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "template ID is invalid")
}
