package store

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/moneylog/internal/errs"
)

// Secret path
// projects/{project}/secrets/{secretID}-{device}/versions/latest

type secretClient interface {
	GetSecret(ctx context.Context, req *secretmanagerpb.GetSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error)
	DeleteSecret(ctx context.Context, req *secretmanagerpb.DeleteSecretRequest, opts ...gax.CallOption) error
}

type secretKeyStore struct {
	client    secretClient
	projectID string
	prefix    string
	device    string
}

func NewSecretKeyStore(client *secretmanager.Client, projectID, secretID, device string) *secretKeyStore {
	return &secretKeyStore{
		client:    client,
		projectID: projectID,
		prefix:    secretID,
		device:    device,
	}
}

func (s *secretKeyStore) secretID() string {
	return fmt.Sprintf("%s-%s", s.prefix, s.device)
}

func (s *secretKeyStore) secretName() string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretID())
}

func (s *secretKeyStore) ensureSecret(ctx context.Context) error {
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: s.secretName()})
	if status.Code(err) == codes.NotFound {
		_, err = s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", s.projectID),
			SecretId: s.secretID(),
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{Automatic: &secretmanagerpb.Replication_Automatic{}},
				},
			},
		})
	}
	return err
}

func (s *secretKeyStore) GetAccessKey(ctx context.Context) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("%s/versions/latest", s.secretName()),
	})
	if status.Code(err) == codes.NotFound {
		return "", nil
	}
	if err != nil {
		return "", errs.NewExternalServiceError("secret manager", true, err)
	}
	return string(res.Payload.Data), nil
}

func (s *secretKeyStore) SetAccessKey(ctx context.Context, key string) error {
	if key == "" {
		return s.ClearAccessKey(ctx)
	}
	if err := s.ensureSecret(ctx); err != nil {
		return errs.NewExternalServiceError("secret manager", true, err)
	}
	_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: s.secretName(),
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(key),
		},
	})
	if err != nil {
		return errs.NewExternalServiceError("secret manager", true, err)
	}
	return nil
}

func (s *secretKeyStore) ClearAccessKey(ctx context.Context) error {
	err := s.client.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
		Name: s.secretName(),
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return errs.NewExternalServiceError("secret manager", true, err)
	}
	return nil
}
