package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/irenedo/iam-eks-user-mapper/internal/sync"

	"github.com/irenedo/iam-eks-user-mapper/pkg/awsclient"
	"github.com/irenedo/iam-eks-user-mapper/pkg/config"
	"github.com/irenedo/iam-eks-user-mapper/pkg/k8sclient"
	metrics "github.com/irenedo/iam-eks-user-mapper/pkg/metrics"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

func main() {
	ctx := context.Background()
	var metricsAddr string
	var enableLeaderElection bool
	var probeAddr string
	var awsRegion string
	var awsRoleArn string
	var refreshInterval time.Duration
	var enableGroupSync bool
	var iamK8sGroups string
	var enableSSO bool
	var ssoRoleArn string
	var enableKarpenter bool
	var karpenterRoleArn string
	var devMode bool

	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election. Enabling this will ensure there is only one active mapper writing aws-auth.")
	flag.StringVar(&awsRegion, "aws-region", "", "AWS region for IAM operations")
	flag.StringVar(&awsRoleArn, "aws-role-arn", "", "IAM role to assume for IAM operations (optional)")
	flag.DurationVar(&refreshInterval, "refresh-interval", 30*time.Second, "How often to sync IAM state into aws-auth")
	flag.BoolVar(&enableGroupSync, "enable-group-sync", true, "Sync IAM group members into aws-auth mapUsers")
	flag.StringVar(&iamK8sGroups, "iam-k8s-groups", "",
		"Comma-separated IAM group to Kubernetes group mappings, e.g. 'Admins->system:masters,Devs->developers'")
	flag.BoolVar(&enableSSO, "enable-sso", false, "Sync the SSO role into aws-auth mapRoles")
	flag.StringVar(&ssoRoleArn, "sso-role-arn", "", "ARN of the SSO role to map")
	flag.BoolVar(&enableKarpenter, "enable-karpenter", false, "Sync the Karpenter node role into aws-auth mapRoles")
	flag.StringVar(&karpenterRoleArn, "karpenter-role-arn", "", "ARN of the Karpenter node role to map")
	flag.BoolVar(&devMode, "dev-mode", false, "Enable development logging mode (more verbose logs)")

	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	opts.Development = opts.Development || devMode
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	groupMappings, err := config.ParseGroupMappings(iamK8sGroups)
	if err != nil {
		setupLog.Error(err, "invalid group mappings")
		os.Exit(1)
	}

	cfg := config.Config{
		AWSRegion:        awsRegion,
		AWSRoleArn:       awsRoleArn,
		RefreshInterval:  refreshInterval,
		EnableGroupSync:  enableGroupSync,
		GroupMappings:    groupMappings,
		EnableSSO:        enableSSO,
		SSORoleArn:       ssoRoleArn,
		EnableKarpenter:  enableKarpenter,
		KarpenterRoleArn: karpenterRoleArn,
	}
	if err := cfg.Validate(); err != nil {
		setupLog.Error(err, "invalid configuration")
		os.Exit(1)
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: metricsAddr},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "iam-eks-user-mapper.eks.aws.com",
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}
	// Register custom metrics
	metrics.RegisterMetrics(ctrlmetrics.Registry)

	awsClient, err := awsclient.NewClient(ctx, cfg.AWSRegion, cfg.AWSRoleArn, ctrl.Log.WithName("awsclient"))
	if err != nil {
		setupLog.Error(err, "unable to create AWS client")
		os.Exit(1)
	}

	clientset, err := kubernetes.NewForConfig(mgr.GetConfig())
	if err != nil {
		setupLog.Error(err, "unable to create Kubernetes clientset")
		os.Exit(1)
	}
	store := k8sclient.NewConfigMapStore(clientset, ctrl.Log.WithName("k8sclient"))

	runner := sync.NewRunner(awsClient, store, cfg, ctrl.Log.WithName("sync"))
	if err := mgr.Add(runner); err != nil {
		setupLog.Error(err, "unable to register sync loop")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
