// Package vault copies secrets out of Azure Key Vault into a parameter store.
package vault

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// Secret is one secret with its current value. Err is set when the
// secret is listed but its value could not be read.
type Secret struct {
	Name    string
	Value   string
	Enabled bool
	Err     error
}

// Source lists secrets with their values.
type Source interface {
	ListSecrets(ctx context.Context) ([]Secret, error)
}

// secretsAPI is the part of *azsecrets.Client used here.
type secretsAPI interface {
	NewListSecretPropertiesPager(options *azsecrets.ListSecretPropertiesOptions) *runtime.Pager[azsecrets.ListSecretPropertiesResponse]
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// AzureVault is a Source backed by an Azure Key Vault.
type AzureVault struct {
	url string
	api secretsAPI
}

var _ Source = (*AzureVault)(nil)

// VaultURL returns the data-plane URL of the named vault.
func VaultURL(name string) string {
	return fmt.Sprintf("https://%s.vault.azure.net/", name)
}

// NewAzureVault connects to the named vault with the default Azure
// credential chain (environment, workload identity, managed identity, CLI).
func NewAzureVault(name string) (*AzureVault, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	url := VaultURL(name)
	client, err := azsecrets.NewClient(url, cred, &azsecrets.ClientOptions{
		DisableChallengeResourceVerification: true,
	})
	if err != nil {
		return nil, fmt.Errorf("key vault client for %s: %w", url, err)
	}
	return &AzureVault{url: url, api: client}, nil
}

// URL returns the vault URL.
func (v *AzureVault) URL() string { return v.url }

// ListSecrets returns every secret in the vault. Disabled secrets are
// returned without a value since Key Vault refuses to read them. A secret
// whose value cannot be read is returned with Err set; only listing errors
// and cancellation fail the call.
func (v *AzureVault) ListSecrets(ctx context.Context) ([]Secret, error) {
	var out []Secret

	pager := v.api.NewListSecretPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list secrets in %s: %w", v.url, err)
		}
		for _, props := range page.Value {
			if props == nil || props.ID == nil {
				continue
			}
			s := Secret{Name: props.ID.Name(), Enabled: true}
			if props.Attributes != nil && props.Attributes.Enabled != nil {
				s.Enabled = *props.Attributes.Enabled
			}
			if s.Enabled {
				resp, err := v.api.GetSecret(ctx, s.Name, "", nil)
				switch {
				case ctx.Err() != nil:
					return nil, ctx.Err()
				case err != nil:
					s.Err = fmt.Errorf("get secret %s: %w", s.Name, err)
				case resp.Value != nil:
					s.Value = *resp.Value
				}
			}
			out = append(out, s)
		}
	}
	return out, nil
}
