package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/moneylog/infra/cloudrun"
	"github.com/GregMSThompson/moneylog/infra/docker"
	"github.com/GregMSThompson/moneylog/infra/firestore"
	"github.com/GregMSThompson/moneylog/infra/identity"
	"github.com/GregMSThompson/moneylog/infra/kms"
	"github.com/GregMSThompson/moneylog/infra/provider"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// set default provider with the correct project
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// enable identity service to allow using firebase
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		// snapshot store
		db, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		// access key encryption
		if _, err := kms.SetupKMS(ctx, prov); err != nil {
			return err
		}
		keyName, err := kms.CreateKey(ctx, prov, "moneylog", "access-key")
		if err != nil {
			return err
		}

		// create docker repo
		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		apiSA, err := cloudrun.SetupCloudRun(ctx, prov, keyName, ident, db, repo)
		if err != nil {
			return err
		}

		ctx.Export("serviceAccount", apiSA.Email)
		return nil
	})
}
