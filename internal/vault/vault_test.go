package vault

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjatkinson/opskit/internal/paramstore"
)

type fakeSecrets struct {
	pages  [][]*azsecrets.SecretProperties
	values map[string]string
	gets   []string
	getErr map[string]error
}

func (f *fakeSecrets) NewListSecretPropertiesPager(*azsecrets.ListSecretPropertiesOptions) *runtime.Pager[azsecrets.ListSecretPropertiesResponse] {
	idx := 0
	return runtime.NewPager(runtime.PagingHandler[azsecrets.ListSecretPropertiesResponse]{
		More: func(r azsecrets.ListSecretPropertiesResponse) bool {
			return r.NextLink != nil
		},
		Fetcher: func(context.Context, *azsecrets.ListSecretPropertiesResponse) (azsecrets.ListSecretPropertiesResponse, error) {
			var resp azsecrets.ListSecretPropertiesResponse
			resp.Value = f.pages[idx]
			idx++
			if idx < len(f.pages) {
				resp.NextLink = to.Ptr("next")
			}
			return resp, nil
		},
	})
}

func (f *fakeSecrets) GetSecret(_ context.Context, name, _ string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.gets = append(f.gets, name)
	if err := f.getErr[name]; err != nil {
		return azsecrets.GetSecretResponse{}, err
	}
	var resp azsecrets.GetSecretResponse
	resp.Value = to.Ptr(f.values[name])
	return resp, nil
}

func props(name string, enabled bool) *azsecrets.SecretProperties {
	id := azsecrets.ID("https://myvault.vault.azure.net/secrets/" + name)
	return &azsecrets.SecretProperties{
		ID:         &id,
		Attributes: &azsecrets.SecretAttributes{Enabled: to.Ptr(enabled)},
	}
}

func TestVaultURL(t *testing.T) {
	assert.Equal(t, "https://my-vault.vault.azure.net/", VaultURL("my-vault"))
}

func TestAzureVault_ListSecrets(t *testing.T) {
	fake := &fakeSecrets{
		pages: [][]*azsecrets.SecretProperties{
			{props("db-password", true), nil},
			{props("old-key", false), props("api-token", true)},
		},
		values: map[string]string{"db-password": "hunter2", "api-token": "tok"},
	}
	v := &AzureVault{url: VaultURL("myvault"), api: fake}

	got, err := v.ListSecrets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Secret{
		{Name: "db-password", Value: "hunter2", Enabled: true},
		{Name: "old-key", Enabled: false},
		{Name: "api-token", Value: "tok", Enabled: true},
	}, got)
	assert.Equal(t, []string{"db-password", "api-token"}, fake.gets, "disabled secrets are not read")
}

func TestAzureVault_UnreadableSecretIsRecorded(t *testing.T) {
	forbidden := errors.New("403 forbidden")
	fake := &fakeSecrets{
		pages:  [][]*azsecrets.SecretProperties{{props("a", true), props("locked", true), props("b", true)}},
		values: map[string]string{"a": "1", "b": "2"},
		getErr: map[string]error{"locked": forbidden},
	}
	got, err := (&AzureVault{url: "u", api: fake}).ListSecrets(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, Secret{Name: "a", Value: "1", Enabled: true}, got[0])
	assert.Equal(t, "locked", got[1].Name)
	assert.ErrorIs(t, got[1].Err, forbidden)
	assert.Equal(t, Secret{Name: "b", Value: "2", Enabled: true}, got[2])
}

func TestAzureVault_CancelledStopsListing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakeSecrets{
		pages:  [][]*azsecrets.SecretProperties{{props("a", true)}},
		getErr: map[string]error{"a": context.Canceled},
	}
	cancel()
	_, err := (&AzureVault{url: "u", api: fake}).ListSecrets(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParamName(t *testing.T) {
	tests := []struct {
		prefix, secret, want string
	}{
		{"", "db", "/db"},
		{"/myapp/secrets", "db", "/myapp/secrets/db"},
		{"/myapp/secrets/", "db", "/myapp/secrets/db"},
		{"myapp", "db", "/myapp/db"},
		{"//a///b", "c", "/a/b/c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParamName(tt.prefix, tt.secret), "prefix %q", tt.prefix)
	}
}

func TestPlanAndMigrate(t *testing.T) {
	secrets := []Secret{
		{Name: "db", Value: "pw", Enabled: true},
		{Name: "off", Value: "", Enabled: false},
		{Name: "api", Value: "key", Enabled: true},
	}
	var logBuf bytes.Buffer
	plan, unreadable := Plan(secrets, "/app", zerolog.New(&logBuf))
	require.Len(t, plan, 2)
	assert.Empty(t, unreadable)
	assert.Contains(t, logBuf.String(), "skipping disabled secret")

	st := paramstore.NewMemStore(paramstore.Parameter{Name: "/app/db", Type: paramstore.TypeString, Value: "stale"})
	st.FailPut = map[string]error{"/app/api": errors.New("kms denied")}

	res, err := Migrate(context.Background(), st, plan, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stored)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "api", res.Failed[0].Secret.Name)

	got, ok := st.Get("/app/db")
	require.True(t, ok)
	assert.Equal(t, paramstore.Parameter{Name: "/app/db", Type: paramstore.TypeSecureString, Value: "pw"}, got)
}

func TestPlan_Unreadable(t *testing.T) {
	secrets := []Secret{
		{Name: "db", Value: "pw", Enabled: true},
		{Name: "locked", Enabled: true, Err: errors.New("403")},
	}
	var logBuf bytes.Buffer
	plan, unreadable := Plan(secrets, "", zerolog.New(&logBuf))
	require.Len(t, plan, 1)
	assert.Equal(t, "/db", plan[0].ParamName)
	require.Len(t, unreadable, 1)
	assert.Equal(t, "locked", unreadable[0].Name)
	assert.Contains(t, logBuf.String(), "failed to read secret")
}

func TestWriteReportFile(t *testing.T) {
	plan := []Migration{{Secret: Secret{Name: "db", Value: "pw", Enabled: true}, ParamName: "/app/db"}}
	dir := t.TempDir()

	masked := filepath.Join(dir, "masked.csv")
	require.NoError(t, WriteReportFile(masked, plan, false))
	data, err := os.ReadFile(masked)
	require.NoError(t, err)
	assert.Equal(t, "Secret Name,SSM Param name,Value\ndb,/app/db,********\n", string(data))

	st, err := os.Stat(masked)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	shown := filepath.Join(dir, "shown.csv")
	require.NoError(t, WriteReportFile(shown, plan, true))
	data, err = os.ReadFile(shown)
	require.NoError(t, err)
	assert.Equal(t, "Secret Name,SSM Param name,Value\ndb,/app/db,pw\n", string(data))
}
