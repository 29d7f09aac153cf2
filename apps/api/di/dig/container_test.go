package dig_container

import (
	"testing"

	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/edupay/apps/api/echo"
	"github.com/trezcool/edupay/core"
	"github.com/trezcool/edupay/core/form"
	"github.com/trezcool/edupay/services/backend"
)

func TestNew(t *testing.T) {
	t.Setenv("ENV", "TEST")

	c := New()
	err := c.Invoke(func(conf *core.Config, submitter form.Submitter, server *echoapi.Server) {
		require.True(t, conf.TestMode)
		require.IsType(t, &form.Simulator{}, submitter)
		require.NotNil(t, server)
		_ = server.Close()
	})
	require.NoError(t, err)
}

func TestNewSubmitter(t *testing.T) {
	conf := &core.Config{Submission: core.SubmissionConfig{Mode: core.SubmissionModeHTTP}}
	client := newBackendClient(conf)

	require.Same(t, client, newSubmitter(conf, client))

	conf.Submission.Mode = core.SubmissionModeSimulate
	require.IsType(t, &form.Simulator{}, newSubmitter(conf, client))
	require.IsType(t, &backend.Client{}, newPaymentLister(client))
}
