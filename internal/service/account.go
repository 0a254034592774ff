package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"staking_bot/internal/db"
	"staking_bot/internal/domain"
	"staking_bot/internal/repository"
	"staking_bot/internal/wallet"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountService owns account lifecycle: lazy idempotent creation with
// per-coin deposit wallets, and referral linking.
type AccountService struct {
	db       *pgxpool.Pool
	accounts *repository.AccountRepository
	keys     wallet.KeyProvider
	cipher   wallet.Cipher
}

func NewAccountService(pool *pgxpool.Pool, keys wallet.KeyProvider, cipher wallet.Cipher) *AccountService {
	return &AccountService{
		db:       pool,
		accounts: repository.NewAccountRepository(pool),
		keys:     keys,
		cipher:   cipher,
	}
}

// FindOrCreate returns the account for a chat, creating it on first
// contact. Creation generates one deposit wallet per supported coin
// and a referral code, all in one transaction. Safe to call
// concurrently for the same chat: exactly one account results.
func (s *AccountService) FindOrCreate(ctx context.Context, chatID int64, username, firstName, lastName string) (*domain.Account, error) {
	existing, err := s.accounts.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	account := &domain.Account{
		ChatID:       chatID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		ReferralCode: generateReferralCode(),
	}

	err = db.RunInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		created, err := s.accounts.CreateTx(ctx, tx, account)
		if err != nil {
			return err
		}
		if !created {
			// lost the creation race; the winner generated the wallets
			return nil
		}

		for _, coin := range domain.Coins {
			kp, err := s.keys.Generate(coin)
			if err != nil {
				return err
			}
			enc, err := s.cipher.Encrypt(kp.PrivateKey)
			if err != nil {
				return err
			}
			w := &domain.AccountWallet{
				AccountID:     account.ID,
				Coin:          coin,
				Address:       kp.Address,
				PrivateKeyEnc: enc,
			}
			if err := s.accounts.CreateWalletTx(ctx, tx, w); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Get returns an existing account or ErrAccountNotFound.
func (s *AccountService) Get(ctx context.Context, chatID int64) (*domain.Account, error) {
	a, err := s.accounts.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// Wallets lists the account's deposit addresses.
func (s *AccountService) Wallets(ctx context.Context, accountID int64) ([]domain.AccountWallet, error) {
	return s.accounts.WalletsByAccount(ctx, accountID)
}

// AcceptReferral links the account to the owner of code. Each account
// may accept exactly one referral, and never its own.
func (s *AccountService) AcceptReferral(ctx context.Context, account *domain.Account, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ErrReferralInvalid
	}
	if account.ReferredBy != nil {
		return ErrReferralUsed
	}

	referrer, err := s.accounts.GetByReferralCode(ctx, code)
	if err != nil {
		return err
	}
	if referrer == nil || referrer.ID == account.ID {
		return ErrReferralInvalid
	}

	linked, err := s.accounts.SetReferredBy(ctx, account.ID, referrer.ID)
	if err != nil {
		return err
	}
	if !linked {
		return ErrReferralUsed
	}
	return nil
}

func generateReferralCode() string {
	b := make([]byte, 4)
	rand.Read(b)
	return strings.ToUpper(hex.EncodeToString(b))
}
