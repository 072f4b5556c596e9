package identity

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/identityplatform"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

func SetupIdentity(ctx *pulumi.Context, prov *gcp.Provider) (*identityplatform.Config, error) {
	// Enables Identity Platform on the project (firebase). Only the owner
	// signs in, so sign-up stays closed.
	return identityplatform.NewConfig(ctx,
		"identityPlatformConfig",
		&identityplatform.ConfigArgs{
			SignIn: &identityplatform.ConfigSignInArgs{
				Email: &identityplatform.ConfigSignInEmailArgs{
					Enabled: pulumi.Bool(true),
				},
			},
			Client: &identityplatform.ConfigClientArgs{
				Permissions: &identityplatform.ConfigClientPermissionsArgs{
					DisabledUserSignup: pulumi.Bool(true),
				},
			},
		},
		pulumi.Provider(prov),
	)
}
