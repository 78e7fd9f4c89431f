package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blooddonor/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"
)

// ErrNotConfirmed means the password was right but the sign-up code was never entered.
var ErrNotConfirmed = errors.New("account not confirmed")

// CognitoAPI is the subset of the Cognito client the provider calls.
type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
}

// RegistrationError is a sign-up rejection with a message fit for the form.
type RegistrationError struct {
	Message string
	Field   string
	Err     error
}

func (e *RegistrationError) Error() string {
	return e.Message
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

type Provider struct {
	client     CognitoAPI
	clientID   string
	adminEmail string
	logger     *logrus.Logger
	now        func() time.Time
}

func NewProvider(client CognitoAPI, clientID, adminEmail string, logger *logrus.Logger) *Provider {
	return &Provider{
		client:     client,
		clientID:   clientID,
		adminEmail: strings.TrimSpace(adminEmail),
		logger:     logger,
		now:        time.Now,
	}
}

// IsAdmin is the single hardcoded admin check.
func (p *Provider) IsAdmin(email string) bool {
	return p.adminEmail != "" && strings.TrimSpace(email) == p.adminEmail
}

// SignIn verifies email and password. Rejections from the pool are reported
// as types.ErrInvalidCredentials.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*types.AuthenticatedIdentity, error) {
	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	}

	resp, err := p.client.InitiateAuth(ctx, input)
	if err != nil {
		return nil, mapSignInError(err)
	}

	result := resp.AuthenticationResult
	if result == nil || result.AccessToken == nil || result.IdToken == nil {
		return nil, types.ErrInvalidCredentials
	}

	user, err := p.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: result.AccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signed in user: %w", err)
	}

	ident := &types.AuthenticatedIdentity{
		Subject:   attribute(user.UserAttributes, "sub"),
		Email:     attribute(user.UserAttributes, "email"),
		Token:     aws.ToString(result.IdToken),
		ExpiresAt: p.now().Add(time.Duration(result.ExpiresIn) * time.Second),
	}
	if ident.Email == "" {
		ident.Email = email
	}
	ident.DisplayName = attribute(user.UserAttributes, "name")
	if ident.DisplayName == "" {
		ident.DisplayName = DisplayNameFromEmail(ident.Email)
	}
	ident.IsAdmin = p.IsAdmin(ident.Email)

	return ident, nil
}

// SignUp creates an account. The display name is stored on the standard
// "name" attribute.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) error {
	input := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(email), // use email as username
		Password: aws.String(password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(displayName)},
		},
	}

	_, err := p.client.SignUp(ctx, input)
	if err != nil {
		return p.mapSignUpError(err)
	}

	return nil
}

func (p *Provider) ConfirmSignUp(ctx context.Context, email, code string) error {
	input := &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	}

	_, err := p.client.ConfirmSignUp(ctx, input)
	if err != nil {
		var codeMismatch *ctypes.CodeMismatchException
		if errors.As(err, &codeMismatch) {
			return &RegistrationError{Message: "Invalid confirmation code. Please check the code and try again.", Field: "code", Err: err}
		}

		var expired *ctypes.ExpiredCodeException
		if errors.As(err, &expired) {
			return &RegistrationError{Message: "That confirmation code has expired.", Field: "code", Err: err}
		}

		return &RegistrationError{Message: "Unable to confirm account. Please try again.", Err: err}
	}

	return nil
}

func mapSignInError(err error) error {
	var userNotConfirmed *ctypes.UserNotConfirmedException
	if errors.As(err, &userNotConfirmed) {
		return fmt.Errorf("%w: %w", ErrNotConfirmed, types.ErrInvalidCredentials)
	}

	var notAuthorized *ctypes.NotAuthorizedException
	var userNotFound *ctypes.UserNotFoundException
	if errors.As(err, &notAuthorized) || errors.As(err, &userNotFound) {
		return types.ErrInvalidCredentials
	}

	return fmt.Errorf("failed to sign in: %w", err)
}

func (p *Provider) mapSignUpError(err error) error {
	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		return &RegistrationError{
			Message: "Password must include uppercase, lowercase, number, and symbol (min 8).",
			Field:   "password",
			Err:     err,
		}
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		return &RegistrationError{
			Message: "An account with this email already exists.",
			Field:   "email",
			Err:     err,
		}
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return &RegistrationError{
			Message: "Some details are invalid. Please review and try again.",
			Err:     err,
		}
	}

	p.logger.WithError(err).Error("unhandled cognito signup error")

	return &RegistrationError{
		Message: "Unable to create account right now. Please try again.",
		Err:     err,
	}
}

func attribute(attrs []ctypes.AttributeType, name string) string {
	for _, attr := range attrs {
		if aws.ToString(attr.Name) == name {
			return aws.ToString(attr.Value)
		}
	}
	return ""
}

// DisplayNameFromEmail uses the local part of an address when no name is known.
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}
